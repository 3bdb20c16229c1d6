package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// TEMPUSFETCH_WEBCLIENT_CLIENT=http.
const EnvPrefix = "TEMPUSFETCH"

// NewViper returns a viper instance seeded with DefaultConfig and wired to
// the tempusfetch config file and environment.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("tempusfetch")
	v.AddConfigPath(".")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the config file (configFile, or tempusfetch.{yaml,json,toml}
// in the working directory when empty) and decodes v into a Config. A
// missing default config file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so that environment variables can
// override keys the config file does not mention.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("base_url", c.BaseURL)
	v.SetDefault("output_dir", c.OutputDir)

	v.SetDefault("outputs.search", c.Outputs.Search)
	v.SetDefault("outputs.swimmer", c.Outputs.Swimmer)
	v.SetDefault("outputs.event", c.Outputs.Event)
	v.SetDefault("outputs.stats", c.Outputs.Stats)

	v.SetDefault("webclient.client", string(c.WebClient.Client))
	v.SetDefault("webclient.user_agent", c.WebClient.UserAgent)
	v.SetDefault("webclient.navigation_timeout", c.WebClient.NavigationTimeout)
	v.SetDefault("webclient.idle_after", c.WebClient.IdleAfter)
	v.SetDefault("webclient.request_timeout", c.WebClient.RequestTimeout)
	v.SetDefault("webclient.headless", c.WebClient.Headless)
	v.SetDefault("webclient.chrome_path", c.WebClient.ChromePath)

	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.json", c.Log.JSON)
	v.SetDefault("log.file", c.Log.File)
	v.SetDefault("log.max_size_mb", c.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", c.Log.MaxBackups)

	v.SetDefault("inertia.inertia_version", c.Inertia.InertiaVersion)
	v.SetDefault("inertia.detect_version", c.Inertia.DetectVersion)

	v.SetDefault("archive.enabled", c.Archive.Enabled)
	v.SetDefault("archive.dir", c.Archive.Dir)

	v.SetDefault("search.first_name", c.Search.FirstName)
	v.SetDefault("search.last_name", c.Search.LastName)
	v.SetDefault("search.club", c.Search.Club)
	v.SetDefault("search.category", c.Search.Category)
	v.SetDefault("search.class", c.Search.Class)
	v.SetDefault("search.status", c.Search.Status)

	v.SetDefault("stats.year", c.Stats.Year)
	v.SetDefault("stats.class", c.Stats.Class)
	v.SetDefault("stats.swim_event", c.Stats.SwimEvent)
	v.SetDefault("stats.pool_type", c.Stats.PoolType)
	v.SetDefault("stats.competition_group", c.Stats.CompetitionGroup)
	v.SetDefault("stats.best_time_only", c.Stats.BestTimeOnly)
	v.SetDefault("stats.from_age", c.Stats.FromAge)
	v.SetDefault("stats.to_age", c.Stats.ToAge)
	v.SetDefault("stats.district", c.Stats.District)
	v.SetDefault("stats.club", c.Stats.Club)
	v.SetDefault("stats.filter.age_filter", c.Stats.Filter.AgeFilter)
	v.SetDefault("stats.filter.best_time_only", c.Stats.Filter.BestTimeOnly)
	v.SetDefault("stats.limit", c.Stats.Limit)

	v.SetDefault("swimmer_id", c.SwimmerID)
	v.SetDefault("event_id", c.EventID)
}
