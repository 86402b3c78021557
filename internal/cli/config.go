package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Schema   SchemaConfig
	Output   OutputConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// SchemaConfig holds the schema directory location.
type SchemaConfig struct {
	Dir string
}

// OutputConfig holds presentation defaults.
type OutputConfig struct {
	Format string
}

// LoadConfig reads configuration from file and env. Env var overrides use
// prefix LIVESET_, e.g. LIVESET_DATABASE_PATH. Command-line flags override
// both.
func LoadConfig() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "liveset", "liveset.db"))
	v.SetDefault("schema.dir", "schema")
	v.SetDefault("output.format", "text")

	v.SetConfigType("yaml")

	cfgPath := os.Getenv("LIVESET_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "liveset"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LIVESET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
