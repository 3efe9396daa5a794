package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/m-mizutani/dubbing/pkg/domain/model"
	"github.com/m-mizutani/dubbing/pkg/infra/transport"
	"github.com/m-mizutani/dubbing/pkg/usecase"
	"github.com/m-mizutani/gt"
)

const (
	knownUUID   = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	pendingUUID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
)

func newDubbingServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/uuid_exists/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("uuid") {
		case knownUUID:
			_, _ = w.Write([]byte(`""`))
		case pendingUUID:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`"file dub does not exist"`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`"file mp4 does not exist"`))
		}
	})
	mux.HandleFunc("/get_file/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("uuid") != knownUUID {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "uuid no existeix"}`))
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="movie.mp4"; filename*=UTF-8''movie.mp4`)
		_, _ = w.Write([]byte("dubbed:" + r.URL.Query().Get("ext")))
	})
	mux.HandleFunc("/feedback_form/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("uuid") == "" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "No s'ha especificat el uuid"}`))
			return
		}
		if r.PostForm.Get("comment") != "great voices" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "unexpected comment"}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFiles_Exists(t *testing.T) {
	server := newDubbingServer(t)
	uc := usecase.NewFiles(transport.New(), model.ServiceConfig{BaseURL: server.URL})
	ctx := context.Background()

	t.Run("known uuid", func(t *testing.T) {
		status, err := uc.Exists(ctx, knownUUID)
		gt.NoError(t, err)
		gt.True(t, status.Exists)
		gt.Equal(t, status.Message, "")
	})

	t.Run("dub still processing", func(t *testing.T) {
		status, err := uc.Exists(ctx, pendingUUID)
		gt.NoError(t, err)
		gt.False(t, status.Exists)
		gt.Equal(t, status.Message, "file dub does not exist")
	})

	t.Run("unknown uuid", func(t *testing.T) {
		status, err := uc.Exists(ctx, "9f0c4d2e-0000-4000-8000-000000000000")
		gt.NoError(t, err)
		gt.False(t, status.Exists)
		gt.Equal(t, status.Message, "file mp4 does not exist")
	})
}

func TestFiles_Exists_InvalidUUIDSkipsRequest(t *testing.T) {
	transport := &MockTransport{}
	uc := usecase.NewFiles(transport, localService)

	_, err := uc.Exists(context.Background(), "not-a-uuid")
	gt.True(t, errors.Is(err, usecase.ErrInvalidUUID))
	gt.Number(t, len(transport.Requests())).Equal(0)
}

func TestFiles_Download(t *testing.T) {
	server := newDubbingServer(t)
	uc := usecase.NewFiles(transport.New(), model.ServiceConfig{BaseURL: server.URL})
	ctx := context.Background()

	t.Run("streams dubbed file", func(t *testing.T) {
		var buf bytes.Buffer
		file, err := uc.Download(ctx, knownUUID, "", &buf)
		gt.NoError(t, err)
		gt.Equal(t, buf.String(), "dubbed:dub")
		gt.Equal(t, file.Filename, "movie.mp4")
		gt.Equal(t, file.Ext, "dub")
		gt.Number(t, file.Size).Equal(int64(len("dubbed:dub")))
	})

	t.Run("unknown uuid is a service error", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := uc.Download(ctx, "9f0c4d2e-0000-4000-8000-000000000000", "srt", &buf)

		var svcErr *model.ServiceError
		gt.True(t, errors.As(err, &svcErr))
		gt.Equal(t, svcErr.StatusCode, http.StatusNotFound)
		gt.Equal(t, svcErr.Message, "uuid no existeix")
		gt.Number(t, buf.Len()).Equal(0)
	})
}

func TestFiles_Download_RequestShape(t *testing.T) {
	transport := &MockTransport{
		sendFunc: func(req *model.Request) []*model.StateChange {
			_, _ = io.WriteString(req.Sink, "bytes")
			return []*model.StateChange{{State: model.StateDone, StatusCode: http.StatusOK, Header: http.Header{}}}
		},
	}
	uc := usecase.NewFiles(transport, localService)

	var buf bytes.Buffer
	_, err := uc.Download(context.Background(), knownUUID, "srt", &buf)
	gt.NoError(t, err)

	req := transport.Requests()[0]
	u, err := url.Parse(req.URL)
	gt.NoError(t, err)
	gt.Equal(t, u.Path, "/get_file/")
	gt.Equal(t, u.Query().Get("uuid"), knownUUID)
	gt.Equal(t, u.Query().Get("ext"), "srt")
}

func TestFiles_SendFeedback(t *testing.T) {
	server := newDubbingServer(t)
	uc := usecase.NewFiles(transport.New(), model.ServiceConfig{BaseURL: server.URL})
	ctx := context.Background()

	t.Run("posts fields with uuid", func(t *testing.T) {
		err := uc.SendFeedback(ctx, &model.Feedback{
			UUID:   knownUUID,
			Fields: map[string]string{"comment": "great voices"},
		})
		gt.NoError(t, err)
	})

	t.Run("requires uuid", func(t *testing.T) {
		err := uc.SendFeedback(ctx, &model.Feedback{Fields: map[string]string{"comment": "x"}})
		gt.Error(t, err)
	})

	t.Run("service rejection", func(t *testing.T) {
		err := uc.SendFeedback(ctx, &model.Feedback{
			UUID:   knownUUID,
			Fields: map[string]string{"comment": "meh"},
		})
		var svcErr *model.ServiceError
		gt.True(t, errors.As(err, &svcErr))
		gt.Equal(t, svcErr.Message, "unexpected comment")
	})
}
