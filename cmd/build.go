package cmd

import (
	"github.com/spf13/cobra"

	"github.com/robocy-lab/robo-lab/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site from content, layouts, and static assets",
	Long: `The build command parses the markdown files under './content/',
applies the layouts from './layouts/' (including partials), copies static
assets, and writes the site to the configured output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return site.Build(appConfig, logger)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
