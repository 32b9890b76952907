package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/robocy-lab/robo-lab/internal/site"
)

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and rebuilds on changes",
	Long: `The serve command performs an initial build, then starts a local web
server over the output directory. Content, layout, and static directories
are watched; changes trigger a debounced rebuild.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := site.Build(appConfig, logger); err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create file watcher: %w", err)
		}
		defer watcher.Close()

		go watchLoop(watcher)

		for _, rootPath := range []string{appConfig.ContentDir, appConfig.LayoutsDir, appConfig.StaticDir} {
			if _, statErr := os.Stat(rootPath); os.IsNotExist(statErr) {
				logger.Debug("directory not found, not watching", "dir", rootPath)
				continue
			}
			err := filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					logger.Warn("walk error while setting up watches", "path", path, "err", err)
					return nil
				}
				if d.IsDir() {
					if watchErr := watcher.Add(path); watchErr != nil {
						logger.Warn("failed to watch directory", "path", path, "err", watchErr)
					}
				}
				return nil
			})
			if err != nil {
				logger.Warn("failed to set up watches", "dir", rootPath, "err", err)
			}
		}

		addr := fmt.Sprintf(":%d", serverPort)
		logger.Info("serving site", "dir", appConfig.OutputDir, "url", "http://localhost"+addr)

		fileServer := http.FileServer(http.Dir(appConfig.OutputDir))
		http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			// No directory listings: a directory without index.html is a 404.
			if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
				if _, err := os.Stat(filepath.Join(appConfig.OutputDir, r.URL.Path, "index.html")); os.IsNotExist(err) {
					http.NotFound(w, r)
					return
				}
			}
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			fileServer.ServeHTTP(w, r)
		})
		return http.ListenAndServe(addr, nil)
	},
}

// watchLoop rebuilds the site on file events, collapsing bursts of events
// (editor save storms, directory copies) into a single rebuild.
func watchLoop(watcher *fsnotify.Watcher) {
	rebuild := newDebouncer(500 * time.Millisecond)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())

			// New subdirectories are not watched automatically.
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					logger.Warn("failed to watch new directory", "path", event.Name, "err", err)
				}
			}

			rebuild.trigger(func() {
				logger.Info("rebuilding site")
				if err := site.Build(appConfig, logger); err != nil {
					logger.Error("rebuild failed", "err", err)
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}

// debouncer delays a function call until quiet time has passed; each
// trigger resets the window and replaces the pending function.
type debouncer struct {
	window time.Duration
	timer  *time.Timer
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window}
}

func (d *debouncer) trigger(fn func()) {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
