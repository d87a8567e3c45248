package cmd

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/spigell/adaptive-interviewer/internal/ai"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "interviewer"
)

type Config struct {
	BatchesDir string       `mapstructure:"batches-dir"`
	Store      *StoreConfig `mapstructure:"store"`
	AI         ai.Config    `mapstructure:"ai"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interviewer runs adaptive oral interviews driven by a language model",
	}
)

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetEnvPrefix("INTERVIEWER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("batches-dir", "batches")
	viper.SetDefault("store.path", app+".db")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("batches-dir", "", "directory with batch definitions")
	rootCmd.PersistentFlags().String("db", "", "path to the sqlite database with interview records")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("batches-dir", rootCmd.PersistentFlags().Lookup("batches-dir"))
	viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	// The version command works without any configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()
	if err == nil {
		return
	}

	// Defaults and environment are enough when no config file was asked for.
	var notFound viper.ConfigFileNotFoundError
	if cfgFile == "" && errors.As(err, &notFound) {
		return
	}

	// We can't proceed if the config file parsed with error.
	log.Fatal(err)
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		return nil, errors.New("config is required")
	}

	if config.Store == nil || strings.TrimSpace(config.Store.Path) == "" {
		return nil, errors.New("store.path is required")
	}

	return config, nil
}
