package compute

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/agbru/postchain/internal/dispatch"
	"github.com/agbru/postchain/internal/logging"
	"github.com/agbru/postchain/internal/orchestration"
)

// DefaultBits is the size of the generated prime.
const DefaultBits = 2200

// Generator produces a prime of the requested bit length.
type Generator func(bits int) (*big.Int, error)

// RandomPrime generates a probable prime with crypto/rand.
func RandomPrime(bits int) (*big.Int, error) {
	return rand.Prime(rand.Reader, bits)
}

// Result is the outcome of one PrimeTask run.
type Result struct {
	Elapsed time.Duration
	Bits    int
}

// ElapsedMillis returns the elapsed time in whole milliseconds.
func (r Result) ElapsedMillis() int64 { return r.Elapsed.Milliseconds() }

// String returns the line shown to the user.
func (r Result) String() string {
	return fmt.Sprintf("Time taken (ms): %d", r.ElapsedMillis())
}

// PrimeTask generates one prime per run.
type PrimeTask struct {
	Bits     int
	Generate Generator
}

// NewPrimeTask returns a task with the default generator. Non-positive bits
// select DefaultBits.
func NewPrimeTask(bits int) PrimeTask {
	if bits <= 0 {
		bits = DefaultBits
	}
	return PrimeTask{Bits: bits, Generate: RandomPrime}
}

// Run hops to background, generates the prime while timing it, and returns
// once the calling task has resumed on its home executor.
func (t PrimeTask) Run(s *dispatch.Scope, background dispatch.Executor) (Result, error) {
	gen := t.Generate
	if gen == nil {
		gen = RandomPrime
	}
	bits := t.Bits
	if bits <= 0 {
		bits = DefaultBits
	}
	return dispatch.WithContext(s, background, func() (Result, error) {
		start := time.Now()
		if _, err := gen(bits); err != nil {
			return Result{}, fmt.Errorf("generate %d-bit prime: %w", bits, err)
		}
		return Result{Elapsed: time.Since(start), Bits: bits}, nil
	})
}

// Indicator shows that work is in progress. SetBusy is called from the UI
// executor.
type Indicator interface {
	SetBusy(busy bool)
}

// NopIndicator ignores busy changes.
type NopIndicator struct{}

// SetBusy implements Indicator.
func (NopIndicator) SetBusy(bool) {}

// Launch is the "run CPU task" trigger. It starts a task on ui that turns the
// indicator on, runs task on background and writes the result to sink. The
// indicator is turned off whatever the outcome.
func Launch(ctx context.Context, ui, background dispatch.Executor, sink orchestration.Sink, indicator Indicator, task PrimeTask, logger logging.Logger) *dispatch.Job {
	if indicator == nil {
		indicator = NopIndicator{}
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return dispatch.Launch(ctx, ui, func(s *dispatch.Scope) error {
		indicator.SetBusy(true)
		defer indicator.SetBusy(false)

		result, err := task.Run(s, background)
		if err != nil {
			logger.Error("cpu task failed", err, logging.Int("bits", task.Bits))
			return err
		}
		logger.Debug("cpu task finished",
			logging.Int("bits", result.Bits),
			logging.Duration("elapsed", result.Elapsed),
		)
		sink.Show(result.String())
		return nil
	})
}
