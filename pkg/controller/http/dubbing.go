package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/dubbing/pkg/domain/interfaces"
	"github.com/m-mizutani/dubbing/pkg/domain/model"
	"github.com/m-mizutani/dubbing/pkg/infra/form"
	"github.com/m-mizutani/dubbing/pkg/usecase"
)

// DubbingHandler relays browser form submissions to the dubbing service
type DubbingHandler struct {
	transport   interfaces.Transport
	service     model.ServiceConfig
	metrics     *metrics
	waitTimeout time.Duration
}

// NewDubbingHandler creates a new DubbingHandler. Request bodies are expected
// to be size-limited by middleware; a limit hit while parsing answers 413.
func NewDubbingHandler(transport interfaces.Transport, service model.ServiceConfig, m *metrics, waitTimeout time.Duration) *DubbingHandler {
	return &DubbingHandler{
		transport:   transport,
		service:     service,
		metrics:     m,
		waitTimeout: waitTimeout,
	}
}

// submissionResponse is returned on an accepted upload
type submissionResponse struct {
	UUID         string `json:"uuid"`
	URL          string `json:"url"`
	WaitingQueue string `json:"waiting_queue,omitempty"`
	Filename     string `json:"filename,omitempty"`
}

// responder collects what the submission renders or alerts for one request
type responder struct {
	mu    sync.Mutex
	ref   *model.DownloadReference
	alert string
}

func (r *responder) Render(ctx context.Context, ref *model.DownloadReference) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ref = ref
}

func (r *responder) Alert(ctx context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alert = message
}

func (r *responder) alertMessage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alert
}

// Handle forwards the incoming form and answers with the outcome
func (h *DubbingHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)
	start := time.Now()

	out := &responder{}
	uc := usecase.NewSubmission(h.transport, h.service, form.FromRequest(r), out, out)

	future, err := uc.Submit(ctx)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("Rejected oversized upload", "limit", tooLarge.Limit)
			h.metrics.submissions.WithLabelValues(outcomeTooLarge).Inc()
			writeError(ctx, w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		logger.Warn("Rejected malformed form", "error", err)
		h.metrics.submissions.WithLabelValues(outcomeFailed).Inc()
		writeError(ctx, w, "invalid form", http.StatusBadRequest)
		return
	}

	waitCtx, cancel := context.WithTimeout(ctx, h.waitTimeout)
	defer cancel()

	result, err := future.Wait(waitCtx)
	select {
	case <-future.Done():
		result, err = future.Wait(context.Background())
	default:
		if !errors.Is(err, context.DeadlineExceeded) {
			// The browser went away; nobody reads a response.
			logger.Info("Client disconnected before the dubbing service answered", "error", err)
			h.metrics.submissions.WithLabelValues(outcomeGone).Inc()
			return
		}
		logger.Warn("Gave up waiting for dubbing service", "error", err)
		h.metrics.submissions.WithLabelValues(outcomeTimeout).Inc()
		writeError(ctx, w, "dubbing service did not answer in time", http.StatusGatewayTimeout)
		return
	}
	h.metrics.duration.Observe(time.Since(start).Seconds())

	var svcErr *model.ServiceError
	switch {
	case err == nil:
		h.metrics.submissions.WithLabelValues(outcomeAccepted).Inc()
		writeJSON(ctx, w, http.StatusOK, &submissionResponse{
			UUID:         result.Reference.Text,
			URL:          result.Reference.URL,
			WaitingQueue: result.Response.WaitingQueue,
			Filename:     result.Response.Filename,
		})
	case errors.As(err, &svcErr):
		h.metrics.submissions.WithLabelValues(outcomeRejected).Inc()
		writeError(ctx, w, svcErr.Message, svcErr.StatusCode)
	default:
		logger.Error("Relayed submission failed", "error", err)
		h.metrics.submissions.WithLabelValues(outcomeFailed).Inc()
		writeError(ctx, w, out.alertMessage(), http.StatusBadGateway)
	}
}
