// Package cli is the tempusfetch command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/raysh454/tempusfetch/internal/app"
	"github.com/raysh454/tempusfetch/internal/logging"
)

// Options are the process-level dependencies of the command tree.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer

	// NewClient replaces the configured webclient backend when set.
	NewClient app.ClientFactory
}

// ErrReported marks an error whose details were already printed.
var ErrReported = errors.New("run failed")

type runtime struct {
	opts Options

	v         *viper.Viper
	cfgFile   string
	envFiles  []string
	app       *app.Application
	logCloser io.Closer
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	root, _ := newRoot(opts)
	return root
}

func newRoot(opts Options) (*cobra.Command, *runtime) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	rt := &runtime{opts: opts, v: app.NewViper()}

	root := &cobra.Command{
		Use:   "tempusfetch",
		Short: "tempusfetch pulls swimmer, event and ranking data from Tempus Open.",
		Long: `tempusfetch opens a Tempus Open page to obtain a session, makes one
authenticated call against the site's JSON API and writes the result to disk.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return rt.teardown()
		},
	}
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&rt.cfgFile, "config", "", "config file (default ./tempusfetch.{yaml,json,toml})")
	pf.StringSliceVar(&rt.envFiles, "env-file", nil, "dotenv files to load before reading config (default .env)")
	pf.String("client", "", "transport backend: chromedp or http")
	pf.String("base-url", "", "site root")
	pf.String("output-dir", "", "directory output files are written to")
	pf.String("user-agent", "", "browser user agent")
	pf.Duration("navigation-timeout", 0, "bound on the bootstrap page load")
	pf.Bool("headless", true, "run Chrome without a window")
	pf.String("chrome-path", "", "Chrome executable")
	pf.String("inertia-version", "", "X-Inertia-Version header value")
	pf.Bool("detect-version", false, "use the asset version announced by the bootstrap page")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.Bool("log-json", false, "log JSON lines instead of colored text")
	pf.String("log-file", "", "also log JSON to this file, rotated")
	pf.Bool("archive", false, "record every capture in the local archive")
	pf.String("archive-dir", "", "archive directory")

	for key, flag := range map[string]string{
		"webclient.client":             "client",
		"base_url":                     "base-url",
		"output_dir":                   "output-dir",
		"webclient.user_agent":         "user-agent",
		"webclient.navigation_timeout": "navigation-timeout",
		"webclient.headless":           "headless",
		"webclient.chrome_path":        "chrome-path",
		"inertia.inertia_version":      "inertia-version",
		"inertia.detect_version":       "detect-version",
		"log.level":                    "log-level",
		"log.json":                     "log-json",
		"log.file":                     "log-file",
		"archive.enabled":              "archive",
		"archive.dir":                  "archive-dir",
	} {
		_ = rt.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newSearchCommand(rt),
		newSwimmerCommand(rt),
		newEventCommand(rt),
		newStatsCommand(rt),
		newHistoryCommand(rt),
	)
	return root, rt
}

func (rt *runtime) setup(cmd *cobra.Command) error {
	if err := app.LoadDotEnv(rt.envFiles...); err != nil {
		return err
	}
	cfg, err := app.Load(rt.v, rt.cfgFile)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log, rt.opts.Stderr)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	rt.logCloser = closer

	a := app.NewApplication(cfg, logger)
	if rt.opts.NewClient != nil {
		a.NewClient = rt.opts.NewClient
	}
	if err := a.OpenArchive(); err != nil {
		return err
	}
	rt.app = a

	logger.Debug("configuration loaded",
		logging.Field{Key: "command", Value: cmd.Name()},
		logging.Field{Key: "client", Value: string(cfg.WebClient.Client)},
		logging.Field{Key: "base_url", Value: cfg.BaseURL})
	return nil
}

func (rt *runtime) teardown() error {
	var errs []error
	if rt.app != nil {
		errs = append(errs, rt.app.Close())
		rt.app = nil
	}
	if rt.logCloser != nil {
		errs = append(errs, rt.logCloser.Close())
		rt.logCloser = nil
	}
	return errors.Join(errs...)
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string, opts Options) int {
	root, rt := newRoot(opts)
	// post-run hooks are skipped when a command fails
	defer func() { _ = rt.teardown() }()

	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !errors.Is(err, ErrReported) {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return 1
}
