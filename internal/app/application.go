// Package app wires the webclient, session, tempus, extract, persist and
// archive packages into single-shot jobs.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raysh454/tempusfetch/internal/archive"
	"github.com/raysh454/tempusfetch/internal/extract"
	"github.com/raysh454/tempusfetch/internal/logging"
	"github.com/raysh454/tempusfetch/internal/persist"
	"github.com/raysh454/tempusfetch/internal/session"
	"github.com/raysh454/tempusfetch/internal/tempus"
	"github.com/raysh454/tempusfetch/internal/webclient"
)

// ClientFactory opens the transport for one run. Tests substitute a dummy.
type ClientFactory func(cfg webclient.Config, logger logging.Logger) (webclient.WebClient, error)

// Application holds config and the shared services for a run.
type Application struct {
	Config *Config
	Logger logging.Logger

	NewClient ClientFactory

	// Archive is optional; captures are only recorded when it is set.
	Archive *archive.Archive
}

// NewApplication constructs an Application. A nil cfg means DefaultConfig.
func NewApplication(cfg *Config, logger logging.Logger) *Application {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("app")
	}
	webclient.RegisterDefaultBackends()
	return &Application{
		Config:    cfg,
		Logger:    logger,
		NewClient: webclient.NewWebClient,
	}
}

// OpenArchive opens the capture archive when the config enables it.
func (a *Application) OpenArchive() error {
	if !a.Config.Archive.Enabled || a.Archive != nil {
		return nil
	}
	arc, err := archive.Open(a.Config.Archive, a.Logger)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	a.Archive = arc
	return nil
}

// Close releases the archive.
func (a *Application) Close() error {
	if a.Archive == nil {
		return nil
	}
	err := a.Archive.Close()
	a.Archive = nil
	return err
}

// Report describes what a run did. Fields past the failing step stay zero.
type Report struct {
	Job     JobKind
	URL     string
	Session *session.Session

	Status int
	Body   []byte

	// Extraction is set for jobs that extract; when it found no list,
	// Written is false and the surfaced props or envelope is in Extraction.
	Extraction *extract.Extraction

	OutputPath string
	Written    []byte

	// Verified is the record count read back from OutputPath, -1 when the
	// job does not verify.
	Verified int

	Capture  *archive.Capture
	Duration time.Duration
}

// FirstRecord returns the first extracted record, nil when there is none.
func (r *Report) FirstRecord() []byte {
	if r.Extraction == nil || len(r.Extraction.Records) == 0 {
		return nil
	}
	return r.Extraction.Records[0]
}

// Run performs job: open the transport, bootstrap a session, make one call,
// then write the result. Steps run strictly in order and the transport is
// closed on every return path. Nothing is written unless the call succeeded.
func (a *Application) Run(ctx context.Context, job Job) (rep *Report, err error) {
	start := time.Now()
	rep = &Report{
		Job:        job.Kind,
		URL:        job.Descriptor.URL,
		OutputPath: job.OutputPath,
		Verified:   -1,
	}
	log := a.Logger.With(logging.Field{Key: "job", Value: string(job.Kind)})
	defer func() { rep.Duration = time.Since(start) }()

	if a.NewClient == nil {
		return rep, errors.New("app: no client factory")
	}
	wc, err := a.NewClient(a.Config.WebClient, a.Logger)
	if err != nil {
		return rep, fmt.Errorf("start %s client: %w", a.Config.WebClient.Client, err)
	}
	defer func() {
		if cerr := wc.Close(); cerr != nil {
			log.Warn("failed to close webclient", logging.Field{Key: "error", Value: cerr})
		}
	}()

	s, err := session.NewBootstrapper(wc, a.Logger).Bootstrap(ctx, job.Descriptor.BootstrapURL)
	if err != nil {
		return rep, err
	}
	rep.Session = s

	res, err := tempus.NewClient(wc, a.Logger, a.Config.Inertia).Call(ctx, s, job.Descriptor)
	if err != nil {
		var serr *tempus.StatusError
		if errors.As(err, &serr) {
			rep.Status = serr.Code
		}
		return rep, err
	}
	rep.Status = res.Status
	rep.Body = res.Body

	payload := []byte(res.Body)
	if job.Extract {
		x, err := extract.Decode(res.Body)
		if err != nil {
			return rep, fmt.Errorf("extract records: %w", err)
		}
		rep.Extraction = x
		log.Debug("envelope keys",
			logging.Field{Key: "keys", Value: x.Keys},
			logging.Field{Key: "props", Value: x.PropKeys})
		if !x.Found() {
			log.Warn("could not locate the record list inside props",
				logging.Field{Key: "kind", Value: string(x.Kind)},
				logging.Field{Key: "props", Value: x.PropKeys})
			return rep, nil
		}
		log.Info("records located",
			logging.Field{Key: "branch", Value: string(x.Kind)},
			logging.Field{Key: "count", Value: len(x.Records)})
		payload = x.List
	}

	written, err := persist.WriteJSON(job.OutputPath, payload)
	if err != nil {
		return rep, err
	}
	rep.Written = written
	log.Info("results saved",
		logging.Field{Key: "path", Value: job.OutputPath},
		logging.Field{Key: "bytes", Value: len(written)})

	if job.Verify {
		n, err := persist.Verify(job.OutputPath)
		if err != nil {
			return rep, fmt.Errorf("verify output: %w", err)
		}
		rep.Verified = n
		log.Info("verification successful", logging.Field{Key: "records", Value: n})
	}

	if a.Archive != nil {
		rep.Capture, err = a.record(ctx, job, rep)
		if err != nil {
			// the output file is already in place
			log.Warn("failed to archive capture", logging.Field{Key: "error", Value: err})
		}
	}

	return rep, nil
}

func (a *Application) record(ctx context.Context, job Job, rep *Report) (*archive.Capture, error) {
	c := archive.Capture{
		Job:        string(job.Kind),
		URL:        job.Descriptor.URL,
		Status:     rep.Status,
		OutputPath: job.OutputPath,
	}
	if rep.Extraction != nil && rep.Extraction.Found() {
		n := len(rep.Extraction.Records)
		c.RecordCount = &n
	}
	return a.Archive.Record(ctx, c, rep.Written)
}
