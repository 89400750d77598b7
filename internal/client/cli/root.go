// Package cli is the command-line front end of the client. Each command
// plays the part of one screen; the shell command keeps a session open and
// moves between screens interactively.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atinyakov/animaltrack/internal/client/api"
	"github.com/atinyakov/animaltrack/internal/client/app"
	"github.com/atinyakov/animaltrack/internal/client/kv"
	"github.com/atinyakov/animaltrack/internal/client/nav"
	"github.com/atinyakov/animaltrack/internal/client/notify"
	"github.com/atinyakov/animaltrack/internal/config"
	"github.com/atinyakov/animaltrack/internal/logger"
)

// errReported marks failures that were already shown as a notification.
var errReported = errors.New("reported")

var errNotLoggedIn = errors.New("not logged in, run `animaltrack login` first")

type rootOptions struct {
	cfgFile     string
	apiURL      string
	storage     string
	storagePath string
	logLevel    string
}

// runtime is everything one command invocation needs.
type runtime struct {
	opts  *config.Options
	log   *logger.Logger
	store kv.Store
	stack *nav.Stack
	app   *app.App
	out   io.Writer
}

func (r *runtime) close() {
	if err := r.store.Close(); err != nil {
		r.log.Log.Warn("closing storage", zap.Error(err))
	}
	_ = r.log.Log.Sync()
}

func (ro *rootOptions) load(cmd *cobra.Command) (*config.Options, error) {
	opts, err := config.Load(ro.cfgFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		opts.APIURL = ro.apiURL
	}
	if flags.Changed("storage") {
		opts.Storage.Driver = ro.storage
	}
	if flags.Changed("storage-path") {
		if opts.Storage.Driver == kv.DriverPostgres {
			opts.Storage.DSN = ro.storagePath
		} else {
			opts.Storage.Path = ro.storagePath
		}
	}
	if flags.Changed("log-level") {
		opts.LogLevel = ro.logLevel
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (ro *rootOptions) newRuntime(cmd *cobra.Command) (*runtime, error) {
	opts, err := ro.load(cmd)
	if err != nil {
		return nil, err
	}

	log := logger.New()
	if err := log.Init(opts.LogLevel); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	httpClient, err := api.NewHTTPClient(opts.Timeout, api.TLSOptions{
		CAFile:   opts.CAFile,
		CertFile: opts.CertFile,
		KeyFile:  opts.KeyFile,
	})
	if err != nil {
		return nil, err
	}
	client, err := api.New(opts.APIURL, httpClient, log.Log.Named("api"))
	if err != nil {
		return nil, err
	}

	store, err := kv.Open(cmd.Context(), opts.Storage.Driver, opts.Storage.Target(), log.Log.Named("kv"))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	stack := nav.NewStack(nav.Login)
	notifier := notify.NewWriter(cmd.ErrOrStderr())

	return &runtime{
		opts:  opts,
		log:   log,
		store: store,
		stack: stack,
		app: app.New(app.Deps{
			Store:     store,
			Remote:    client,
			Navigator: stack,
			Notifier:  notifier,
			Logger:    log.Log,
		}),
		out: cmd.OutOrStdout(),
	}, nil
}

// run wraps a command body with runtime setup and teardown.
func (ro *rootOptions) run(fn func(ctx context.Context, rt *runtime, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := ro.newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close()
		return fn(cmd.Context(), rt, args)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd(version, buildDate string) *cobra.Command {
	ro := &rootOptions{}

	root := &cobra.Command{
		Use:           "animaltrack",
		Short:         "Track animals from the command line",
		Long:          "animaltrack lists, edits and removes tracked animals, keeping an offline copy of the list.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&ro.cfgFile, "config", "c", "", "config file path (default "+config.DefaultPath()+")")
	pf.StringVar(&ro.apiURL, "api-url", "", "remote API base URL")
	pf.StringVar(&ro.storage, "storage", "", "storage driver: file, sqlite, postgres, memory")
	pf.StringVar(&ro.storagePath, "storage-path", "", "storage file path, or DSN for postgres")
	pf.StringVar(&ro.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newLoginCmd(ro),
		newListCmd(ro),
		newShowCmd(ro),
		newEditCmd(ro),
		newDeleteCmd(ro),
		newLogoutCmd(ro),
		newShellCmd(ro),
		newVersionCmd(version, buildDate),
	)
	return root
}

// Execute runs the client and exits non-zero on failure.
func Execute(version, buildDate string) {
	root := NewRootCmd(version, buildDate)
	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
