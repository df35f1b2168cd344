package cmd

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from flags, environment
// variables, .env files, the config file and defaults, in that precedence.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Output  string

	// Engine configuration
	StorePath      string
	Workers        int
	MatchThreshold float64
	MatchLimit     int

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (bound by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.birthsync.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".birthsync")
		}
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Output:  viper.GetString("output"),

		StorePath:      viper.GetString("store"),
		Workers:        viper.GetInt("workers"),
		MatchThreshold: viper.GetFloat64("threshold"),
		MatchLimit:     viper.GetInt("limit"),

		// Empty means no explicit level; the logger falls back to -v/-q.
		LogLevel:  viper.GetString("log-level"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
	}

	config.applyDefaults()
	return config, nil
}

// applyDefaults fills zero values with sensible defaults so partial configs
// still behave.
func (c *Config) applyDefaults() {
	if c.Output == "" {
		c.Output = "table"
	}
	if c.StorePath == "" {
		c.StorePath = "calendar.csv"
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.MatchThreshold == 0 {
		c.MatchThreshold = 60
	}
	if c.MatchLimit <= 0 {
		c.MatchLimit = 10
	}
}

// loadEnvFiles loads .env files from the working directory if present.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
