package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/m-mizutani/dubbing/pkg/domain/model"
	"github.com/m-mizutani/dubbing/pkg/infra/transport"
	"github.com/m-mizutani/dubbing/pkg/usecase"
	"github.com/m-mizutani/gt"
)

const statsBody = `{
    "total_files": 12,
    "total_time": "01:02:03",
    "files_stored": 3,
    "files_stored_size": "1.50 GB",
    "free_storage_space": "40.00 GB",
    "queue": {"items": 2, "who": {"j-ne@ex-mple.org": 2}},
    "stored": {"items": 3, "who": {"j-ne@ex-mple.org": 1, "m-rc@ex-mple.org": 2}}
}`

func newInfoServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/stats/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := time.Parse("2006-01-02", r.URL.Query().Get("date")); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(statsBody))
	})
	mux.HandleFunc("/voices/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "ona", "language": "ca"}]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestInfo_Stats(t *testing.T) {
	server := newInfoServer(t)
	uc := usecase.NewInfo(transport.New(), model.ServiceConfig{BaseURL: server.URL})

	stats, err := uc.Stats(context.Background(), "2024-03-01")
	gt.NoError(t, err)
	gt.Equal(t, stats.Date, "2024-03-01")
	gt.Equal(t, stats.FilesStored, 3)
	gt.Equal(t, stats.FilesStoredSize, "1.50 GB")
	gt.Equal(t, stats.FreeStorageSpace, "40.00 GB")
	gt.Equal(t, stats.Queue.Items, 2)
	gt.Equal(t, stats.Stored.Who["m-rc@ex-mple.org"], 2)

	gt.Number(t, len(stats.Usage)).Equal(2)
	gt.Equal(t, string(stats.Usage["total_files"]), "12")
	_, ok := stats.Usage["queue"]
	gt.False(t, ok)
}

func TestInfo_Stats_InvalidDateSkipsRequest(t *testing.T) {
	transport := &MockTransport{}
	uc := usecase.NewInfo(transport, localService)

	for _, date := range []string{"01/03/2024", "2024-13-01", "yesterday"} {
		_, err := uc.Stats(context.Background(), date)
		gt.True(t, errors.Is(err, usecase.ErrInvalidDate))
	}
	gt.Number(t, len(transport.Requests())).Equal(0)
}

func TestInfo_Stats_DefaultsToToday(t *testing.T) {
	transport := &MockTransport{
		sendFunc: func(req *model.Request) []*model.StateChange {
			return lifecycle(http.StatusOK, `{"queue": {"items": 0}}`)
		},
	}
	uc := usecase.NewInfo(transport, localService)

	stats, err := uc.Stats(context.Background(), "")
	gt.NoError(t, err)

	u, err := url.Parse(transport.Requests()[0].URL)
	gt.NoError(t, err)
	gt.Equal(t, u.Path, "/stats/")
	gt.Equal(t, u.Query().Get("date"), stats.Date)
	_, err = time.Parse("2006-01-02", stats.Date)
	gt.NoError(t, err)
}

func TestInfo_Stats_ServiceError(t *testing.T) {
	transport := &MockTransport{
		sendFunc: func(req *model.Request) []*model.StateChange {
			return lifecycle(http.StatusBadRequest, `{}`)
		},
	}
	_, err := usecase.NewInfo(transport, localService).Stats(context.Background(), "2024-03-01")

	var svcErr *model.ServiceError
	gt.True(t, errors.As(err, &svcErr))
	gt.Equal(t, svcErr.StatusCode, http.StatusBadRequest)
	gt.Equal(t, svcErr.Message, "Bad Request")
}

func TestInfo_Voices(t *testing.T) {
	server := newInfoServer(t)
	uc := usecase.NewInfo(transport.New(), model.ServiceConfig{BaseURL: server.URL})

	body, err := uc.Voices(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, string(body), `[{"id": "ona", "language": "ca"}]`)
}
