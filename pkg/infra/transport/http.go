package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/dubbing/pkg/domain/interfaces"
	"github.com/m-mizutani/dubbing/pkg/domain/model"
	"github.com/m-mizutani/dubbing/pkg/domain/types"
	"github.com/m-mizutani/dubbing/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
)

// defaultMaxResponseBody caps buffered response bodies. Streamed bodies
// (Request.Sink) are not limited.
const defaultMaxResponseBody int64 = 10 << 20

// ErrResponseTooLarge ends an exchange whose buffered body exceeds the limit
var ErrResponseTooLarge = goerr.New("response body exceeds limit")

type config struct {
	timeout         time.Duration
	httpClient      *http.Client
	userAgent       string
	maxResponseBody int64
}

// Option is a functional option for the HTTP transport
type Option func(*config)

// WithTimeout bounds each exchange. Zero, the default, means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying client
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.userAgent = ua
	}
}

// WithMaxResponseBody sets how many bytes of a buffered body are accepted.
// A larger body fails the exchange with ErrResponseTooLarge.
func WithMaxResponseBody(n int64) Option {
	return func(c *config) {
		c.maxResponseBody = n
	}
}

type httpTransport struct {
	client          *http.Client
	userAgent       string
	maxResponseBody int64
}

// New creates a Transport backed by net/http. Each Send runs in its own
// goroutine and cannot be aborted by the caller.
func New(opts ...Option) interfaces.Transport {
	cfg := &config{
		userAgent:       "dubbing-client/" + types.Version,
		maxResponseBody: defaultMaxResponseBody,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client := cfg.httpClient
	if client == nil {
		client = &http.Client{Timeout: cfg.timeout}
	}

	return &httpTransport{
		client:          client,
		userAgent:       cfg.userAgent,
		maxResponseBody: cfg.maxResponseBody,
	}
}

// Send starts the exchange and returns immediately
func (t *httpTransport) Send(ctx context.Context, req *model.Request, observer model.StateObserver) {
	async.Dispatch(ctx, req.Method+" "+req.URL, func(ctx context.Context) error {
		return t.exchange(ctx, req, observer)
	})
}

func (t *httpTransport) exchange(ctx context.Context, req *model.Request, observer model.StateObserver) error {
	logger := ctxlog.From(ctx)

	fail := func(err error) error {
		observer(ctx, &model.StateChange{State: model.StateDone, Err: err})
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, req.Body)
	if err != nil {
		if c, ok := req.Body.(io.Closer); ok {
			_ = c.Close()
		}
		return fail(goerr.Wrap(err, "failed to create HTTP request", goerr.V("url", req.URL)))
	}
	if req.ContentLength > 0 {
		httpReq.ContentLength = req.ContentLength
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", t.userAgent)

	observer(ctx, &model.StateChange{State: model.StateOpened})

	started := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return fail(goerr.Wrap(err, "HTTP request failed",
			goerr.V("method", req.Method),
			goerr.V("url", req.URL),
		))
	}
	defer resp.Body.Close()

	observer(ctx, &model.StateChange{
		State:      model.StateHeadersReceived,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	})
	observer(ctx, &model.StateChange{
		State:      model.StateLoading,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	})

	var data []byte
	if req.Sink != nil && resp.StatusCode == http.StatusOK {
		if _, err := io.Copy(req.Sink, resp.Body); err != nil {
			return fail(goerr.Wrap(err, "failed to stream response body", goerr.V("url", req.URL)))
		}
	} else {
		data, err = io.ReadAll(io.LimitReader(resp.Body, t.maxResponseBody+1))
		if err != nil {
			return fail(goerr.Wrap(err, "failed to read response body", goerr.V("url", req.URL)))
		}
		if int64(len(data)) > t.maxResponseBody {
			return fail(goerr.Wrap(ErrResponseTooLarge, "response body truncated",
				goerr.V("url", req.URL),
				goerr.V("status", resp.StatusCode),
				goerr.V("limit", t.maxResponseBody),
			))
		}
	}

	logger.Debug("HTTP exchange completed",
		"method", req.Method,
		"url", req.URL,
		"status", resp.StatusCode,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	observer(ctx, &model.StateChange{
		State:      model.StateDone,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	})
	return nil
}
