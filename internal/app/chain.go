package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/postchain/internal/cli"
	"github.com/agbru/postchain/internal/compute"
	apperrors "github.com/agbru/postchain/internal/errors"
	"github.com/agbru/postchain/internal/dispatch"
	"github.com/agbru/postchain/internal/logging"
	"github.com/agbru/postchain/internal/orchestration"
	"github.com/agbru/postchain/internal/tui"
)

// trigger is one thing the user can start: a chain variant or the prime task.
type trigger struct {
	name  string
	key   string
	start func(ctx context.Context) *dispatch.Job
}

var variantKeys = map[string]string{
	orchestration.VariantCallback:   "c",
	orchestration.VariantStructured: "s",
	orchestration.VariantMainSafe:   "m",
}

// buildTriggers returns the chain triggers selected by variant and the prime
// trigger. Chain triggers raise indicator while their job runs. Every start
// function must be called on deps.loop.
func (a *Application) buildTriggers(deps runtimeDeps, variant string, sink orchestration.Sink, indicator compute.Indicator) (chains []trigger, prime trigger, err error) {
	orchestrators, err := orchestration.Select(variant, orchestration.Deps{
		Service:    deps.service,
		UI:         deps.loop,
		IO:         deps.io,
		Background: deps.background,
		Sink:       sink,
		Logger:     deps.logger,
		Recorder:   deps.recorder,
	})
	if err != nil {
		return nil, trigger{}, err
	}

	postID := a.Config.PostID
	for _, o := range orchestrators {
		o := o
		chains = append(chains, trigger{
			name: o.Name(),
			key:  variantKeys[o.Name()],
			start: func(ctx context.Context) *dispatch.Job {
				indicator.SetBusy(true)
				job := o.Run(ctx, postID)
				// Completes once the indicator has been lowered on the loop.
				settled, complete := dispatch.NewJob()
				go func() {
					<-job.Done()
					deps.loop.Execute(func() {
						indicator.SetBusy(false)
						complete(job.Err())
					})
				}()
				return settled
			},
		})
	}

	task := compute.NewPrimeTask(a.Config.PrimeBits)
	if a.Generator != nil {
		task.Generate = a.Generator
	}
	prime = trigger{
		name: "prime",
		key:  "p",
		start: func(ctx context.Context) *dispatch.Job {
			return compute.Launch(ctx, deps.loop, deps.background, sink, indicator, task, deps.logger)
		},
	}
	return chains, prime, nil
}

// startOnLoop calls t.start on loop and returns its job. If ctx ends before
// the loop gets to it, the returned job fails with the context error.
func startOnLoop(ctx context.Context, loop *dispatch.Loop, t trigger) *dispatch.Job {
	jobs := make(chan *dispatch.Job, 1)
	loop.Execute(func() { jobs <- t.start(ctx) })
	select {
	case job := <-jobs:
		return job
	case <-ctx.Done():
		job, complete := dispatch.NewJob()
		complete(ctx.Err())
		return job
	}
}

// runCLI triggers the configured work Repeat times, waits for every run and
// prints the summary.
func (a *Application) runCLI(ctx context.Context, out io.Writer, deps runtimeDeps) int {
	presenter := cli.NewPresenter(out, a.Config.Quiet)
	var indicator compute.Indicator = compute.NopIndicator{}
	if !a.Config.Quiet {
		indicator = cli.NewSpinnerIndicator(a.ErrWriter, "fetching...")
	}

	chains, prime, err := a.buildTriggers(deps, a.Config.Variant, presenter, indicator)
	if err != nil {
		deps.logger.Error("setup failed", err)
		return apperrors.ExitErrorGeneric
	}
	work := chains
	if a.Config.Prime {
		work = []trigger{prime}
	}

	if !a.Config.Quiet {
		target := fmt.Sprintf("post %d from %s", a.Config.PostID, a.Config.BaseURL)
		if a.Config.Prime {
			target = fmt.Sprintf("%d-bit prime", a.Config.PrimeBits)
		}
		deps.logger.Info("starting", logging.String("target", target),
			logging.Int("runs", len(work)*a.Config.Repeat))
	}
	deps.logger.Debug("execution contexts ready",
		logging.String("ui", deps.loop.Name()),
		logging.String("io", deps.io.Name()),
		logging.Int("io_workers", deps.io.Size()),
		logging.String("background", deps.background.Name()),
		logging.Int("background_workers", deps.background.Size()),
	)

	results := make([]cli.RunResult, len(work)*a.Config.Repeat)
	g := new(errgroup.Group)
	for i := range results {
		t := work[i%len(work)]
		name := t.name
		if a.Config.Repeat > 1 {
			name = fmt.Sprintf("%s#%d", t.name, i/len(work)+1)
		}
		start := time.Now()
		job := startOnLoop(ctx, deps.loop, t)
		g.Go(func() error {
			err := job.Wait(ctx)
			results[i] = cli.RunResult{Name: name, Duration: time.Since(start), Err: err}
			return nil
		})
	}
	_ = g.Wait()

	summarized := make(chan struct{})
	deps.loop.Execute(func() {
		defer close(summarized)
		presenter.PresentSummary(results)
	})
	select {
	case <-summarized:
	case <-ctx.Done():
	}

	for _, r := range results {
		if r.Err != nil {
			return apperrors.ExitCodeFor(r.Err)
		}
	}
	return apperrors.ExitSuccess
}

// runTUI exposes every trigger in the dashboard.
func (a *Application) runTUI(ctx context.Context, deps runtimeDeps) int {
	// The console logger would corrupt the alternate screen.
	deps.logger = logging.Nop{}
	bridge := tui.NewBridge()
	chains, prime, err := a.buildTriggers(deps, orchestration.VariantAll, bridge, bridge)
	if err != nil {
		return apperrors.ExitErrorGeneric
	}

	actions := make([]tui.Action, 0, len(chains)+1)
	for _, t := range append(chains, prime) {
		t := t
		actions = append(actions, tui.Action{
			Name: t.name,
			Key:  t.key,
			Start: func(ctx context.Context) *dispatch.Job {
				return startOnLoop(ctx, deps.loop, t)
			},
		})
	}
	return tui.Run(ctx, bridge, actions, Version)
}
