package app

import (
	"github.com/raysh454/tempusfetch/internal/archive"
	"github.com/raysh454/tempusfetch/internal/logging"
	"github.com/raysh454/tempusfetch/internal/tempus"
	"github.com/raysh454/tempusfetch/internal/webclient"
)

// OutputFiles names the file each job writes, relative to Config.OutputDir.
type OutputFiles struct {
	Search  string `mapstructure:"search"`
	Swimmer string `mapstructure:"swimmer"`
	Event   string `mapstructure:"event"`
	Stats   string `mapstructure:"stats"`
}

// Config is the runtime configuration of a tempusfetch run.
type Config struct {
	BaseURL   string `mapstructure:"base_url"`
	OutputDir string `mapstructure:"output_dir"`

	Outputs   OutputFiles      `mapstructure:"outputs"`
	WebClient webclient.Config `mapstructure:"webclient"`
	Log       logging.Config   `mapstructure:"log"`
	Inertia   tempus.Options   `mapstructure:"inertia"`
	Archive   archive.Config   `mapstructure:"archive"`

	// Job inputs used when the command line does not override them.
	Search    tempus.SearchQuery `mapstructure:"search"`
	Stats     tempus.StatsQuery  `mapstructure:"stats"`
	SwimmerID int                `mapstructure:"swimmer_id"`
	EventID   int                `mapstructure:"event_id"`
}

// DefaultConfig returns the configuration the tool runs with when nothing is
// configured: the production site, a headless browser, and the job inputs
// the scripts were written against.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   tempus.DefaultBaseURL,
		OutputDir: ".",
		Outputs: OutputFiles{
			Search:  "swimmer_output.json",
			Swimmer: "swimmer_details_output.json",
			Event:   "event_details_output.json",
			Stats:   "output.json",
		},
		WebClient: webclient.DefaultConfig(),
		Log: logging.Config{
			Level:      "info",
			MaxSizeMB:  1,
			MaxBackups: 3,
		},
		Archive: archive.Config{
			Enabled: false,
			Dir:     archive.DefaultDir,
		},
		Search:    tempus.DefaultSearchQuery(),
		Stats:     tempus.DefaultStatsQuery(),
		SwimmerID: tempus.DefaultSwimmerID,
		EventID:   tempus.DefaultEventID,
	}
}
