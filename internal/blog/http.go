package blog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/postchain/internal/errors"
	"github.com/agbru/postchain/internal/metrics"
)

const (
	// DefaultBaseURL is the public blog API the client talks to by default.
	DefaultBaseURL = "https://jsonplaceholder.typicode.com/"
	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 4 << 20
	tracerName   = "github.com/agbru/postchain/internal/blog"
)

// HTTPService implements Service over HTTP:
//
//	GET {base}/posts/{id}
//	GET {base}/users/{id}
//	GET {base}/users/{id}/posts
type HTTPService struct {
	base     string
	client   *http.Client
	recorder metrics.Recorder
	tracer   trace.Tracer
}

// Option configures an HTTPService.
type Option func(*HTTPService)

// WithHTTPClient replaces the HTTP client. Its Timeout is kept as is.
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPService) { s.client = c }
}

// WithTimeout sets the per-request timeout of the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPService) { s.client.Timeout = d }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *HTTPService) { s.recorder = r }
}

// NewHTTPService creates a client for the blog API rooted at baseURL.
func NewHTTPService(baseURL string, opts ...Option) (*HTTPService, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("blog: invalid base URL %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("blog: base URL %q must be an absolute http(s) URL", baseURL)
	}

	s := &HTTPService{
		base:     u.String(),
		client:   &http.Client{Timeout: DefaultTimeout},
		recorder: metrics.Nop{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BaseURL returns the root all paths are resolved against.
func (s *HTTPService) BaseURL() string { return s.base }

// GetPost implements Service.
func (s *HTTPService) GetPost(ctx context.Context, id int) (Post, error) {
	return fetch[Post](ctx, s, "GetPost", ResourcePost, id, "posts", strconv.Itoa(id))
}

// GetUser implements Service.
func (s *HTTPService) GetUser(ctx context.Context, id int) (Author, error) {
	return fetch[Author](ctx, s, "GetUser", ResourceUser, id, "users", strconv.Itoa(id))
}

// GetPostsByUser implements Service.
func (s *HTTPService) GetPostsByUser(ctx context.Context, id int) ([]Post, error) {
	return fetch[[]Post](ctx, s, "GetPostsByUser", ResourceUserPosts, id, "users", strconv.Itoa(id), "posts")
}

func fetch[T any](ctx context.Context, s *HTTPService, op, resource string, id int, segments ...string) (T, error) {
	ctx, span := s.tracer.Start(ctx, "blog."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("postchain.resource", resource),
			attribute.Int("postchain.resource.id", id),
		),
	)
	defer span.End()

	start := time.Now()
	v, err := get[T](ctx, s, op, segments)
	s.recorder.ObserveFetch(resource, apperrors.FetchOutcome(err), time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return v, err
}

func get[T any](ctx context.Context, s *HTTPService, op string, segments []string) (T, error) {
	var zero T

	endpoint, err := url.JoinPath(s.base, segments...)
	if err != nil {
		return zero, apperrors.TransportError{Op: op, URL: s.base, Cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return zero, apperrors.TransportError{Op: op, URL: endpoint, Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return zero, apperrors.TransportError{Op: op, URL: endpoint, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return zero, apperrors.TransportError{
			Op:         op,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Cause:      errors.New(resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return zero, apperrors.TransportError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Cause: err}
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return zero, apperrors.EmptyBodyError{Op: op}
	}

	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return zero, apperrors.DecodeError{Op: op, Cause: err}
	}
	return v, nil
}
