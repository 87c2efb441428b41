// Package app wires configuration, the dispatch contexts, the blog client and
// the presentation layer into the postchain command.
package app

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/agbru/postchain/internal/blog"
	"github.com/agbru/postchain/internal/compute"
	"github.com/agbru/postchain/internal/config"
	apperrors "github.com/agbru/postchain/internal/errors"
	"github.com/agbru/postchain/internal/dispatch"
	"github.com/agbru/postchain/internal/logging"
	"github.com/agbru/postchain/internal/metrics"
	"github.com/agbru/postchain/internal/server"
	"github.com/agbru/postchain/internal/ui"
)

// Application represents the postchain application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer

	// Service overrides the HTTP client built from Config.
	Service blog.Service
	// Generator overrides the prime generator.
	Generator compute.Generator
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithService sets the blog service used by every chain.
func WithService(s blog.Service) AppOption {
	return func(a *Application) { a.Service = s }
}

// WithGenerator sets the prime generator used by the CPU task.
func WithGenerator(g compute.Generator) AppOption {
	return func(a *Application) { a.Generator = g }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "postchain"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// runtimeDeps are the long-lived collaborators of one Run.
type runtimeDeps struct {
	logger     logging.Logger
	recorder   metrics.Recorder
	service    blog.Service
	loop       *dispatch.Loop
	io         *dispatch.Pool
	background *dispatch.Pool
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor)

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	deps, err := a.buildDeps()
	if err != nil {
		deps.logger.Error("startup failed", err)
		return apperrors.ExitCodeFor(err)
	}

	if prom, ok := deps.recorder.(*metrics.Prometheus); ok {
		stop := a.serveMetrics(ctx, prom.Handler(), deps.logger)
		defer stop()
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	deps.loop.Start(loopCtx)
	defer func() {
		deps.loop.Close()
		<-deps.loop.Done()
	}()

	if a.Config.TUI {
		return a.runTUI(ctx, deps)
	}
	return a.runCLI(ctx, out, deps)
}

func (a *Application) buildDeps() (runtimeDeps, error) {
	d := runtimeDeps{
		logger:     logging.NewConsoleLogger(a.ErrWriter, "postchain", a.Config.Verbose, a.Config.NoColor),
		recorder:   metrics.Nop{},
		loop:       dispatch.NewLoop("ui"),
		io:         dispatch.NewPool("io", a.Config.Workers),
		background: dispatch.NewPool("default", runtime.NumCPU()),
	}
	if a.Config.MetricsAddr != "" {
		d.recorder = metrics.NewPrometheus()
	}

	d.service = a.Service
	if d.service == nil {
		svc, err := blog.NewHTTPService(a.Config.BaseURL,
			blog.WithTimeout(a.Config.Timeout),
			blog.WithRecorder(d.recorder),
		)
		if err != nil {
			return d, err
		}
		d.service = svc
	}
	return d, nil
}

// serveMetrics starts the metrics server in the background. The returned
// function stops it.
func (a *Application) serveMetrics(ctx context.Context, h http.Handler, logger logging.Logger) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	srv := server.New(a.Config.MetricsAddr, h, logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.ListenAndServe(ctx); err != nil {
			logger.Error("metrics server failed", err, logging.String("addr", a.Config.MetricsAddr))
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
