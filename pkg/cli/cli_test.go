package cli_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/m-mizutani/dubbing/pkg/cli"
	"github.com/m-mizutani/gt"
)

type upstream struct {
	mu     sync.Mutex
	emails []string
}

func (u *upstream) handler(status int, body string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/dubbing_file/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			u.mu.Lock()
			u.emails = append(u.emails, r.FormValue("email"))
			u.mu.Unlock()
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
	return mux
}

func videoFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movie.mp4")
	gt.NoError(t, os.WriteFile(path, []byte("video"), 0600))
	return path
}

func TestRun_Submit(t *testing.T) {
	up := &upstream{}
	server := httptest.NewServer(up.handler(http.StatusOK, `{"uuid": "abc123"}`))
	defer server.Close()

	err := cli.Run(context.Background(), []string{
		"dubbing", "--log-level", "error",
		"submit", "--base-url", server.URL, "--file", videoFile(t), "--email", "user@example.org",
	})
	gt.NoError(t, err)

	up.mu.Lock()
	defer up.mu.Unlock()
	gt.Number(t, len(up.emails)).Equal(1)
	gt.Equal(t, up.emails[0], "user@example.org")
}

func TestRun_Submit_Rejected(t *testing.T) {
	up := &upstream{}
	server := httptest.NewServer(up.handler(http.StatusUnsupportedMediaType, `{"error": "Tipus de fitxer no vàlid"}`))
	defer server.Close()

	err := cli.Run(context.Background(), []string{
		"dubbing", "--log-level", "error",
		"submit", "--base-url", server.URL, "--file", videoFile(t),
	})
	gt.Error(t, err)
}

func TestRun_InvalidLogLevel(t *testing.T) {
	err := cli.Run(context.Background(), []string{"dubbing", "--log-level", "loud", "exists", "--uuid", "x"})
	gt.Error(t, err)
}

func TestRun_Exists_InvalidUUID(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"dubbing", "--log-level", "error",
		"exists", "--base-url", "http://127.0.0.1:1", "--uuid", "not-a-uuid",
	})
	gt.Error(t, err)
}

func TestRun_Stats(t *testing.T) {
	var dates []string
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("/stats/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		dates = append(dates, r.URL.Query().Get("date"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"total_files": 4, "files_stored": 1, "queue": {"items": 0, "who": {}}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	err := cli.Run(context.Background(), []string{
		"dubbing", "--log-level", "error",
		"stats", "--base-url", server.URL, "--date", "2024-03-01",
	})
	gt.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	gt.Number(t, len(dates)).Equal(1)
	gt.Equal(t, dates[0], "2024-03-01")
}

func TestRun_Stats_InvalidDate(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"dubbing", "--log-level", "error",
		"stats", "--base-url", "http://127.0.0.1:1", "--date", "03/01/2024",
	})
	gt.Error(t, err)
}
