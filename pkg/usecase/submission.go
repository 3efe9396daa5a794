package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/dubbing/pkg/domain/interfaces"
	"github.com/m-mizutani/dubbing/pkg/domain/model"
	"github.com/m-mizutani/dubbing/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
)

type submission struct {
	transport interfaces.Transport
	service   model.ServiceConfig
	form      interfaces.FormSource
	target    interfaces.DownloadTarget
	alerter   interfaces.Alerter
}

// NewSubmission creates a SubmissionUseCase bound to one form and one output target
func NewSubmission(
	transport interfaces.Transport,
	service model.ServiceConfig,
	form interfaces.FormSource,
	target interfaces.DownloadTarget,
	alerter interfaces.Alerter,
) interfaces.SubmissionUseCase {
	return &submission{
		transport: transport,
		service:   service,
		form:      form,
		target:    target,
		alerter:   alerter,
	}
}

// Submit posts the form as multipart to /dubbing_file/ and returns without
// waiting. The returned error only covers reading the form. The body is
// encoded while it is sent, so a file that fails mid-read ends the exchange
// as a transport failure.
func (uc *submission) Submit(ctx context.Context) (*async.Future[*model.SubmissionResult], error) {
	logger := ctxlog.From(ctx)

	payload, err := uc.form.Payload(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read form")
	}

	body := payload.Stream()

	url := uc.service.Endpoint(model.PathDubbingFile)
	logger.Info("Submitting file for dubbing",
		"url", url,
		"fields", len(payload.Fields),
		"files", len(payload.Files),
		"size_bytes", body.Length,
	)

	future := async.NewFuture[*model.SubmissionResult]()
	uc.transport.Send(ctx, &model.Request{
		Method:        http.MethodPost,
		URL:           url,
		ContentType:   body.ContentType,
		Body:          body,
		ContentLength: body.Length,
	}, func(ctx context.Context, change *model.StateChange) {
		if !change.IsTerminal() {
			return
		}
		// A repeated terminal notification must not render or alert twice.
		select {
		case <-future.Done():
			return
		default:
		}
		result, err := uc.complete(ctx, change)
		future.Resolve(result, err)
	})

	return future, nil
}

func (uc *submission) complete(ctx context.Context, change *model.StateChange) (*model.SubmissionResult, error) {
	logger := ctxlog.From(ctx)

	if change.Err != nil {
		uc.alerter.Alert(ctx, fmt.Sprintf("Could not reach the dubbing service: %v", change.Err))
		return nil, goerr.Wrap(change.Err, "dubbing request failed")
	}

	var resp model.ServiceResponse
	if err := json.Unmarshal(change.Body, &resp); err != nil {
		uc.alerter.Alert(ctx, fmt.Sprintf("Unexpected response from the dubbing service (HTTP %d)", change.StatusCode))
		return nil, goerr.Wrap(err, "failed to parse dubbing service response",
			goerr.V("status", change.StatusCode),
			goerr.V("body", truncate(change.Body, 256)),
		)
	}

	if change.StatusCode != http.StatusOK {
		if resp.Error == "" {
			resp.Error = http.StatusText(change.StatusCode)
		}
		logger.Warn("Dubbing service rejected submission",
			"status", change.StatusCode,
			"error", resp.Error,
		)
		uc.alerter.Alert(ctx, resp.Error)
		return nil, &model.ServiceError{StatusCode: change.StatusCode, Message: resp.Error}
	}

	if resp.UUID == "" {
		uc.alerter.Alert(ctx, "The dubbing service did not return a file identifier")
		return nil, goerr.New("uuid missing in successful response", goerr.V("status", change.StatusCode))
	}

	ref := model.NewDownloadReference(uc.service, resp.UUID)
	uc.target.Render(ctx, ref)

	logger.Info("File accepted for dubbing",
		"uuid", resp.UUID,
		"waiting_queue", resp.WaitingQueue,
		"download_url", ref.URL,
	)

	return &model.SubmissionResult{Response: &resp, Reference: ref}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
