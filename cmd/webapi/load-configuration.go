package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ardanlabs/conf"
	"gopkg.in/yaml.v2"
)

// WebAPIConfiguration describes the web API configuration. This structure is automatically parsed by
// loadConfiguration and values from flags, environment variables or configuration file will be loaded.
type WebAPIConfiguration struct {
	Config struct {
		Path string `conf:"default:/conf/config.yml"`
	}
	Web struct {
		APIHost         string        `conf:"default:0.0.0.0:3000"`
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:5s"`
		ShutdownTimeout time.Duration `conf:"default:5s"`
	}
	Debug bool
	DB    struct {
		Driver          string        `conf:"default:sqlite3"`
		DSN             string        `conf:"default:/tmp/onair.db,noprint"`
		MaxOpenConns    int           `conf:"default:10"`
		MaxIdleConns    int           `conf:"default:5"`
		ConnMaxLifetime time.Duration `conf:"default:30m"`
	}
	Auth struct {
		Secret     string        `conf:"noprint"`
		TokenTTL   time.Duration `conf:"default:24h"`
		BcryptCost int           `conf:"default:12"`
	}
}

// loadConfiguration creates a WebAPIConfiguration starting from flags, environment variables and configuration
// file. It works by loading environment variables first, then update the config using command line flags, finally
// loading the configuration file (specified in WebAPIConfiguration.Config.Path).
// So, CLI parameters will override the environment, and configuration file will override everything.
// Note that the configuration file can be specified only via CLI or environment variable.
func loadConfiguration() (WebAPIConfiguration, error) {
	return parseConfiguration(os.Args[1:])
}

// parseConfiguration loads the configuration from the given command line arguments, then the environment and
// the configuration file, in the order described by loadConfiguration.
func parseConfiguration(args []string) (WebAPIConfiguration, error) {
	var cfg WebAPIConfiguration

	// Try to load configuration from environment variables and command line switches
	if err := conf.Parse(args, "ONAIR", &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, err := conf.Usage("ONAIR", &cfg)
			if err != nil {
				return cfg, fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return cfg, conf.ErrHelpWanted
		}
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// Override values from YAML if specified and if it exists (useful in k8s/compose)
	fp, err := os.Open(cfg.Config.Path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("can't read the config file, while it exists: %w", err)
	} else if err == nil {
		defer fp.Close()
		yamlFile, err := io.ReadAll(fp)
		if err != nil {
			return cfg, fmt.Errorf("can't read config file: %w", err)
		}
		if err = yaml.Unmarshal(yamlFile, &cfg); err != nil {
			return cfg, fmt.Errorf("can't unmarshal config file: %w", err)
		}
	}

	return cfg, nil
}
