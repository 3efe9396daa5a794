package usecase

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/dubbing/pkg/domain/interfaces"
	"github.com/m-mizutani/dubbing/pkg/domain/model"
	"github.com/m-mizutani/dubbing/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
)

// ErrInvalidUUID is returned before any request when an identifier is not a UUID
var ErrInvalidUUID = goerr.New("invalid uuid")

type files struct {
	transport interfaces.Transport
	service   model.ServiceConfig
}

// NewFiles creates a FilesUseCase
func NewFiles(transport interfaces.Transport, service model.ServiceConfig) interfaces.FilesUseCase {
	return &files{
		transport: transport,
		service:   service,
	}
}

// roundTrip sends req and blocks until the terminal notification
func roundTrip(ctx context.Context, transport interfaces.Transport, req *model.Request) (*model.StateChange, error) {
	future := async.NewFuture[*model.StateChange]()
	transport.Send(ctx, req, func(ctx context.Context, change *model.StateChange) {
		if change.IsTerminal() {
			future.Resolve(change, change.Err)
		}
	})
	return future.Wait(ctx)
}

// Exists asks the service whether processed files exist for id
func (uc *files) Exists(ctx context.Context, id string) (*model.FileStatus, error) {
	if err := validateUUID(id); err != nil {
		return nil, err
	}

	change, err := roundTrip(ctx, uc.transport, &model.Request{
		Method: http.MethodGet,
		URL:    uc.service.EndpointWithQuery(model.PathUUIDExists, url.Values{"uuid": {id}}),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query uuid", goerr.V("uuid", id))
	}

	status := &model.FileStatus{UUID: id}
	switch change.StatusCode {
	case http.StatusOK:
		status.Exists = true
	case http.StatusNotFound:
		status.Exists = false
	default:
		return nil, serviceError(change)
	}
	status.Message = decodeMessage(change.Body)

	ctxlog.From(ctx).Debug("Checked uuid", "uuid", id, "exists", status.Exists)
	return status, nil
}

// Download streams /get_file/ for id and ext into w
func (uc *files) Download(ctx context.Context, id, ext string, w io.Writer) (*model.DownloadedFile, error) {
	if err := validateUUID(id); err != nil {
		return nil, err
	}
	if ext == "" {
		ext = model.ExtDubbed
	}

	counter := &countingWriter{w: w}
	change, err := roundTrip(ctx, uc.transport, &model.Request{
		Method: http.MethodGet,
		URL: uc.service.EndpointWithQuery(model.PathDownloadFile, url.Values{
			"uuid": {id},
			"ext":  {ext},
		}),
		Sink: counter,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download file",
			goerr.V("uuid", id),
			goerr.V("ext", ext),
		)
	}
	if change.StatusCode != http.StatusOK {
		return nil, serviceError(change)
	}

	file := &model.DownloadedFile{
		UUID:     id,
		Ext:      ext,
		Filename: attachmentFilename(change.Header),
		Size:     counter.n,
	}

	ctxlog.From(ctx).Info("Downloaded file",
		"uuid", id,
		"ext", ext,
		"filename", file.Filename,
		"size_bytes", file.Size,
	)
	return file, nil
}

// SendFeedback posts a comment about a processed file
func (uc *files) SendFeedback(ctx context.Context, feedback *model.Feedback) error {
	if feedback.UUID == "" {
		return goerr.New("uuid is required for feedback")
	}

	form := url.Values{}
	for k, v := range feedback.Fields {
		form.Set(k, v)
	}
	form.Set("uuid", feedback.UUID)

	change, err := roundTrip(ctx, uc.transport, &model.Request{
		Method:      http.MethodPost,
		URL:         uc.service.Endpoint(model.PathFeedbackForm),
		ContentType: "application/x-www-form-urlencoded",
		Body:        strings.NewReader(form.Encode()),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to send feedback", goerr.V("uuid", feedback.UUID))
	}
	if change.StatusCode != http.StatusOK {
		return serviceError(change)
	}

	ctxlog.From(ctx).Info("Feedback sent", "uuid", feedback.UUID)
	return nil
}

func validateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return goerr.Wrap(ErrInvalidUUID, "rejected identifier", goerr.V("uuid", id))
	}
	return nil
}

func serviceError(change *model.StateChange) error {
	msg := decodeMessage(change.Body)
	if msg == "" {
		msg = http.StatusText(change.StatusCode)
	}
	return &model.ServiceError{StatusCode: change.StatusCode, Message: msg}
}

// decodeMessage extracts the message of a JSON body. The service answers
// either with a bare JSON string ("file mp4 does not exist") or with an
// {"error": ...} object. Anything else yields "".
func decodeMessage(body []byte) string {
	var text string
	if err := json.Unmarshal(body, &text); err == nil {
		return text
	}

	var resp model.ServiceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.Error
}

func attachmentFilename(header http.Header) string {
	disposition := header.Get("Content-Disposition")
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
