package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/estrattori/eventi/internal/annotate"
	"github.com/estrattori/eventi/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "eventi",
	Short: "Eventi - structured event extraction from Italian investigative text",
	Long: `Eventi extracts structured events (meetings, phone calls, hand-offs)
from free-form Italian investigative text, and normalizes Italian postal
addresses into structured components.

Extraction is rule-driven: lexical and dependency trigger patterns run over
linguistically annotated sentences, participants and places come from named
entities, and every event carries a deterministic identity so repeated runs
agree.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("eventi v0.2.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.eventi/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.eventi")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("EVENTI")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig folds the config file and environment over defaults
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Output.Verbose = verbose

	if v := viper.GetString("annotate.backend"); v != "" {
		cfg.Annotate.Backend = v
	}
	if v := viper.GetString("annotate.url"); v != "" {
		cfg.Annotate.URL = v
	}
	if v := viper.GetString("annotate.model"); v != "" {
		cfg.Annotate.Model = v
	}
	if v := viper.GetDuration("annotate.timeout"); v > 0 {
		cfg.Annotate.Timeout = v
	}
	if v := viper.GetInt("concurrency.batch_workers"); v > 0 {
		cfg.Concurrency.BatchWorkers = v
	}
	if v := viper.GetString("server.addr"); v != "" {
		cfg.Server.Addr = v
	}
	if v := viper.GetString("rules_path"); v != "" {
		cfg.RulesPath = v
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	return cfg
}

// buildAnnotator creates the lazily-initialized shared annotator for the
// configured backend
func buildAnnotator(cfg *model.Config) *annotate.Lazy {
	return annotate.NewLazy(func() (annotate.Annotator, error) {
		switch cfg.Annotate.Backend {
		case "ner":
			return annotate.NewNERAnnotator(cfg.Annotate.Model)
		default:
			return annotate.NewHTTPAnnotator(
				cfg.Annotate.URL,
				cfg.Annotate.Timeout,
				cfg.Annotate.RatePerSec,
				cfg.Annotate.Burst,
			), nil
		}
	})
}
