package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"agribuddy/internal/config"
	"agribuddy/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "agribuddy",
	Short: "Agribuddy - agricultural assistant API service",
	Long: `Agribuddy is the chat backend of the Agribuddy application.
It answers farming questions from a curated knowledge base or by
delegating to generative providers, and records every exchange.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.agribuddy")
	}

	viper.SetEnvPrefix("AGRIBUDDY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "90s")

	// AI
	viper.SetDefault("ai.vision.provider", "openai")
	viper.SetDefault("ai.vision.model", "gpt-4o")
	viper.SetDefault("ai.vision.options.temperature", 0.7)
	viper.SetDefault("ai.vision.options.max_tokens", 2048)
	viper.SetDefault("ai.vision.options.top_p", 1.0)
	viper.SetDefault("ai.text.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("ai.text.model", "llama3-8b-8192")
	viper.SetDefault("ai.text.timeout", "30s")
	viper.SetDefault("ai.provider_timeout", "60s")
	viper.SetDefault("ai.title_timeout", "10s")
	viper.SetDefault("ai.system_instruction", config.DefaultSystemInstruction)

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.time_format", "RFC3339")

	// Postgres
	viper.SetDefault("postgres.dsn", "postgres://postgres@localhost:5432/agribuddy?sslmode=disable")
	viper.SetDefault("postgres.max_open_conns", 50)
	viper.SetDefault("postgres.max_idle_conns", 20)
	viper.SetDefault("postgres.conn_max_lifetime", "5m")

	// Redis
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	// Knowledge base
	viper.SetDefault("knowledge.cache_ttl", "5m")

	// Uploads
	viper.SetDefault("upload.max_size", 15*1024*1024)
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
