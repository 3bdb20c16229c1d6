package app

import (
	"path/filepath"

	"github.com/raysh454/tempusfetch/internal/tempus"
)

// JobKind names one of the four calls the tool can make.
type JobKind string

const (
	JobSearch  JobKind = "search"
	JobSwimmer JobKind = "swimmer"
	JobEvent   JobKind = "event"
	JobStats   JobKind = "stats"
)

// Job is a single bootstrap-call-persist run.
type Job struct {
	Kind       JobKind
	Descriptor tempus.Descriptor
	OutputPath string

	// Extract locates the record list inside the envelope before writing,
	// and Verify reads the written list back.
	Extract bool
	Verify  bool
}

func (c *Config) endpoints() tempus.Endpoints {
	return tempus.NewEndpoints(c.BaseURL)
}

func (c *Config) output(name string) string {
	return filepath.Join(c.OutputDir, name)
}

// SearchJob searches swimmers by name.
func (c *Config) SearchJob(q tempus.SearchQuery) Job {
	return Job{
		Kind:       JobSearch,
		Descriptor: c.endpoints().SearchSwimmers(q),
		OutputPath: c.output(c.Outputs.Search),
	}
}

// SwimmerJob fetches one swimmer's page object.
func (c *Config) SwimmerJob(swimmerID int) Job {
	return Job{
		Kind:       JobSwimmer,
		Descriptor: c.endpoints().SwimmerDetails(swimmerID),
		OutputPath: c.output(c.Outputs.Swimmer),
	}
}

// EventJob fetches a swimmer's results in one event.
func (c *Config) EventJob(swimmerID, eventID int) Job {
	return Job{
		Kind:       JobEvent,
		Descriptor: c.endpoints().EventDetails(swimmerID, eventID),
		OutputPath: c.output(c.Outputs.Event),
	}
}

// StatsJob runs a ranking query and keeps only the located record list.
func (c *Config) StatsJob(q tempus.StatsQuery) Job {
	return Job{
		Kind:       JobStats,
		Descriptor: c.endpoints().Statistics(q),
		OutputPath: c.output(c.Outputs.Stats),
		Extract:    true,
		Verify:     true,
	}
}
