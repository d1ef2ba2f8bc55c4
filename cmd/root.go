// file: cmd/root.go
// version: 2.0.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/jdfalk/newsdeck/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var envFile string
var backendURL string
var cachePath string
var cacheBackend string
var fallbackDriver string
var fallbackDSN string
var locationMode string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "newsdeck",
	Short: "News, weather and sports aggregation for a dashboard",
	Long: `newsdeck fetches, caches and cleans data from a news backend,
a forecast provider, a reverse-geocoding provider and a sports backend.

Run "newsdeck serve" for the JSON API and event stream, or use the
one-shot commands to query a single source from the terminal.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.newsdeck.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "http://localhost:8000", "news and sports backend base URL")
	rootCmd.PersistentFlags().StringVar(&cacheBackend, "cache", "pebble", "cache backend: pebble (default) or memory")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache-path", "newsdeck-cache", "directory for the Pebble cache")
	rootCmd.PersistentFlags().StringVar(&fallbackDriver, "fallback-driver", "none", "relational fallback: sqlite, postgres or none")
	rootCmd.PersistentFlags().StringVar(&fallbackDSN, "fallback-dsn", "", "fallback database path (sqlite) or connection string (postgres)")
	rootCmd.PersistentFlags().StringVar(&locationMode, "location", "ip", "location source: static, ip or off")

	viper.BindPFlag("backend_url", rootCmd.PersistentFlags().Lookup("backend"))
	viper.BindPFlag("cache_backend", rootCmd.PersistentFlags().Lookup("cache"))
	viper.BindPFlag("cache_path", rootCmd.PersistentFlags().Lookup("cache-path"))
	viper.BindPFlag("fallback_driver", rootCmd.PersistentFlags().Lookup("fallback-driver"))
	viper.BindPFlag("fallback_dsn", rootCmd.PersistentFlags().Lookup("fallback-dsn"))
	viper.BindPFlag("location_mode", rootCmd.PersistentFlags().Lookup("location"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(prefetchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(diagnosticsCmd)
}

func initConfig() {
	if envFile != "" {
		if err := godotenv.Load(envFile); err == nil {
			log.Printf("[DEBUG] Loaded environment from %s", envFile)
		} else if !os.IsNotExist(err) {
			log.Printf("[WARN] Could not load %s: %v", envFile, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".newsdeck")
	}

	viper.SetEnvPrefix("newsdeck")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	config.InitConfig()
}
