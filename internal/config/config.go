// Package config parses the command line and environment into an AppConfig.
// Values are resolved in the order CLI flags > environment > defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/agbru/postchain/internal/blog"
	"github.com/agbru/postchain/internal/compute"
	apperrors "github.com/agbru/postchain/internal/errors"
	"github.com/agbru/postchain/internal/orchestration"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "POSTCHAIN_"

// Defaults.
const (
	DefaultVariant = orchestration.VariantMainSafe
	DefaultPostID  = 1
	DefaultWorkers = 4
	DefaultRepeat  = 1
)

// AppConfig aggregates the application's configuration.
type AppConfig struct {
	// BaseURL is the root of the blog API.
	BaseURL string
	// Variant selects the orchestrator ("callback", "structured", "mainsafe"
	// or "all").
	Variant string
	// PostID is the post the chain starts from.
	PostID int
	// Timeout bounds every HTTP request.
	Timeout time.Duration
	// Prime runs the CPU task instead of the chain.
	Prime bool
	// PrimeBits is the size of the generated prime.
	PrimeBits int
	// Workers is the size of the I/O pool.
	Workers int
	// Repeat triggers the selected work this many times.
	Repeat int
	// TUI starts the interactive dashboard.
	TUI bool
	// Quiet prints results only.
	Quiet bool
	// Verbose enables debug logging.
	Verbose bool
	// MetricsAddr, when set, serves /metrics on this address.
	MetricsAddr string
	// NoColor disables colored output.
	NoColor bool
}

// Default returns the configuration used when nothing is set.
func Default() AppConfig {
	return AppConfig{
		BaseURL:   blog.DefaultBaseURL,
		Variant:   DefaultVariant,
		PostID:    DefaultPostID,
		Timeout:   blog.DefaultTimeout,
		PrimeBits: compute.DefaultBits,
		Workers:   DefaultWorkers,
		Repeat:    DefaultRepeat,
	}
}

// ParseConfig parses args, applies environment overrides for flags that
// were not set, and validates the result.
//
// Parameters:
//   - programName: the name shown in usage output.
//   - args: the command-line arguments, without the program name.
//   - errorWriter: where usage and parse errors are written.
//
// Returns:
//   - AppConfig: the resolved configuration.
//   - error: flag.ErrHelp when help was requested, a ConfigError otherwise.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [flags]\n\n", programName)
		fmt.Fprintln(errorWriter, "Fetches a post, its author and the author's posts, then prints a summary.")
		fmt.Fprintf(errorWriter, "Every flag can also be set through %s<NAME> (e.g. %sVARIANT).\n\n", EnvPrefix, EnvPrefix)
		fs.PrintDefaults()
	}

	config := Default()
	fs.StringVar(&config.BaseURL, "base-url", config.BaseURL, "Root URL of the blog API.")
	fs.StringVar(&config.Variant, "variant", config.Variant, "Chain variant: callback, structured, mainsafe or all.")
	fs.IntVar(&config.PostID, "post-id", config.PostID, "Post the chain starts from.")
	fs.DurationVar(&config.Timeout, "timeout", config.Timeout, "Timeout of each HTTP request (e.g. 10s, 1m).")
	fs.BoolVar(&config.Prime, "prime", false, "Run the CPU-bound prime task instead of the chain.")
	fs.IntVar(&config.PrimeBits, "prime-bits", config.PrimeBits, "Bit length of the generated prime.")
	fs.IntVar(&config.Workers, "workers", config.Workers, "Number of concurrent HTTP requests.")
	fs.IntVar(&config.Repeat, "repeat", config.Repeat, "Number of times the work is triggered.")
	fs.BoolVar(&config.TUI, "tui", false, "Start the interactive dashboard.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print results only.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Enable debug logging.")
	fs.BoolVar(&config.Verbose, "v", false, "Shorthand for --verbose.")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.NewConfigError("%v", err)
	}
	if fs.NArg() > 0 {
		err := apperrors.NewConfigError("unexpected arguments: %v", fs.Args())
		fmt.Fprintf(errorWriter, "Error: %v\n", err)
		return AppConfig{}, err
	}

	applyEnvOverrides(&config, fs)
	if !isFlagSet(fs, "no-color") && os.Getenv("NO_COLOR") != "" {
		config.NoColor = true
	}

	if err := config.Validate(); err != nil {
		fmt.Fprintf(errorWriter, "Error: %v\n", err)
		return AppConfig{}, err
	}
	return config, nil
}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate() error {
	if !orchestration.IsValidVariant(c.Variant) {
		return apperrors.NewConfigError("unknown variant %q (want callback, structured, mainsafe or all)", c.Variant)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.NewConfigError("invalid base URL %q: must be an absolute http(s) URL", c.BaseURL)
	}
	switch {
	case c.PostID <= 0:
		return apperrors.NewConfigError("post id must be positive, got %d", c.PostID)
	case c.Timeout <= 0:
		return apperrors.NewConfigError("timeout must be positive, got %v", c.Timeout)
	case c.PrimeBits < 2:
		return apperrors.NewConfigError("prime bits must be at least 2, got %d", c.PrimeBits)
	case c.Workers <= 0:
		return apperrors.NewConfigError("workers must be positive, got %d", c.Workers)
	case c.Repeat <= 0:
		return apperrors.NewConfigError("repeat must be positive, got %d", c.Repeat)
	case c.Quiet && c.Verbose:
		return apperrors.NewConfigError("--quiet and --verbose are mutually exclusive")
	}
	return nil
}
