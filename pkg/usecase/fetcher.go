package usecase

import (
	"context"
	"net/http"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/dubbing/pkg/domain/interfaces"
	"github.com/m-mizutani/dubbing/pkg/domain/model"
)

type fetcher struct {
	transport interfaces.Transport
}

// NewFetcher creates a FetcherUseCase
func NewFetcher(transport interfaces.Transport) interfaces.FetcherUseCase {
	return &fetcher{transport: transport}
}

// Get issues a GET and calls callback with the response body once the
// exchange ends with HTTP 200. Any other outcome is dropped.
func (uc *fetcher) Get(ctx context.Context, url string, callback func(body string)) {
	var once sync.Once

	uc.transport.Send(ctx, &model.Request{
		Method: http.MethodGet,
		URL:    url,
	}, func(ctx context.Context, change *model.StateChange) {
		if !change.IsTerminal() {
			return
		}
		if !change.OK() {
			ctxlog.From(ctx).Debug("GET did not succeed, dropping",
				"url", url,
				"status", change.StatusCode,
				"error", change.Err,
			)
			return
		}
		once.Do(func() {
			callback(string(change.Body))
		})
	})
}
