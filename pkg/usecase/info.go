package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/dubbing/pkg/domain/interfaces"
	"github.com/m-mizutani/dubbing/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// ErrInvalidDate is returned before any request when a stats date is not YYYY-MM-DD
var ErrInvalidDate = goerr.New("invalid date")

var statsKnownKeys = []string{
	"files_stored",
	"files_stored_size",
	"free_storage_space",
	"queue",
	"stored",
}

type info struct {
	transport interfaces.Transport
	service   model.ServiceConfig
	now       func() time.Time
}

// NewInfo creates an InfoUseCase
func NewInfo(transport interfaces.Transport, service model.ServiceConfig) interfaces.InfoUseCase {
	return &info{
		transport: transport,
		service:   service,
		now:       time.Now,
	}
}

// Stats fetches queue and storage statistics for date (YYYY-MM-DD). An empty
// date means today.
func (uc *info) Stats(ctx context.Context, date string) (*model.Stats, error) {
	if date == "" {
		date = uc.now().Format(model.StatsDateLayout)
	}
	if _, err := time.Parse(model.StatsDateLayout, date); err != nil {
		return nil, goerr.Wrap(ErrInvalidDate, "rejected stats date", goerr.V("date", date))
	}

	change, err := roundTrip(ctx, uc.transport, &model.Request{
		Method: http.MethodGet,
		URL:    uc.service.EndpointWithQuery(model.PathStats, url.Values{"date": {date}}),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query stats", goerr.V("date", date))
	}
	if change.StatusCode != http.StatusOK {
		return nil, serviceError(change)
	}

	var stats model.Stats
	if err := json.Unmarshal(change.Body, &stats); err != nil {
		return nil, goerr.Wrap(err, "failed to parse stats", goerr.V("body", truncate(change.Body, 256)))
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(change.Body, &raw); err != nil {
		return nil, goerr.Wrap(err, "failed to parse stats", goerr.V("body", truncate(change.Body, 256)))
	}
	for _, key := range statsKnownKeys {
		delete(raw, key)
	}
	stats.Date = date
	stats.Usage = raw

	ctxlog.From(ctx).Debug("Fetched stats", "date", date, "queue", stats.Queue.Items)
	return &stats, nil
}

// Voices returns the voice catalogue the service proxies from its TTS backend,
// unchanged.
func (uc *info) Voices(ctx context.Context) ([]byte, error) {
	change, err := roundTrip(ctx, uc.transport, &model.Request{
		Method: http.MethodGet,
		URL:    uc.service.Endpoint(model.PathVoices),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list voices")
	}
	if change.StatusCode != http.StatusOK {
		return nil, serviceError(change)
	}
	return change.Body, nil
}
