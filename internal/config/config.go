package config

type Config struct {
	SiteTitle    string `mapstructure:"siteTitle"`
	OutputDir    string `mapstructure:"outputDir"`
	BaseURL      string `mapstructure:"baseURL"`
	ContentDir   string `mapstructure:"contentDir"`
	LayoutsDir   string `mapstructure:"layoutsDir"`
	StaticDir    string `mapstructure:"staticDir"`
	SortListings bool   `mapstructure:"sortListings"`
}
