package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/directory-enrich/internal/config"
)

var (
	cfg *config.Config

	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "directory-enrich",
	Short: "Enrich local business listings from their website, Google Places and Yelp",
	Long: `directory-enrich gathers facts about a local business from three sources,
reconciles them into one listing, writes SEO copy and scores completeness.

Sources (each runs only when its key is set):
  website   the business homepage, through Firecrawl or a direct fetch
  places    Google Places (ENRICH_GOOGLE_KEY)
  reviews   Yelp Fusion (ENRICH_YELP_KEY)

Settings come from ./config.yaml or --config, overridden by ENRICH_* variables.`,
	Example: `  directory-enrich enrich --id biz-1 --name "Acme Winery" --city "Paso Robles"
  directory-enrich batch --file listings.yaml --out results.jsonl
  directory-enrich serve --port 8080
  directory-enrich runs list`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

// setup loads configuration, applies flag overrides and installs the
// global logger before any subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.LoadFile(configPath)
	if err != nil {
		return eris.Wrap(err, "load config")
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if err := config.InitLogger(c.Log); err != nil {
		return eris.Wrap(err, "init logger")
	}
	cfg = c

	zap.L().Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.Strings("sources", configuredSources(c)),
		zap.String("enhancer", c.Enhance.Provider),
		zap.String("store", c.Store.Driver),
		zap.Duration("deadline", c.Pipeline.Deadline()),
	)
	return nil
}

// configuredSources names the sources that have credentials. The website
// source needs none.
func configuredSources(c *config.Config) []string {
	names := []string{"website"}
	if c.Google.Key != "" {
		names = append(names, "places")
	}
	if c.Yelp.Key != "" {
		names = append(names, "reviews")
	}
	return names
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
