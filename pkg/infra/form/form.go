package form

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/m-mizutani/dubbing/pkg/domain/interfaces"
	"github.com/m-mizutani/dubbing/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// FileField is the multipart field the dubbing service reads the upload from
const FileField = "file"

// defaultMaxMemory matches net/http's own default for ParseMultipartForm
const defaultMaxMemory = 32 << 20

type fileSource struct {
	path   string
	fields map[string]string
}

// FromFile builds the payload from a file on disk plus fixed fields. The file
// is opened when the payload is requested and streamed when it is encoded.
func FromFile(path string, fields map[string]string) interfaces.FormSource {
	return &fileSource{path: path, fields: fields}
}

func (s *fileSource) Payload(ctx context.Context) (*model.FormPayload, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open upload file", goerr.V("path", s.path))
	}

	payload := model.NewFormPayload()
	for k, v := range s.fields {
		payload.Set(k, v)
	}
	payload.AddFile(FileField, filepath.Base(s.path), f)
	return payload, nil
}

type requestSource struct {
	r *http.Request
}

// FromRequest exposes an incoming multipart (or urlencoded) request as a form.
// All values and files are forwarded unchanged. Uploaded files stay open
// (in memory or spooled to disk by net/http) until the payload is encoded.
func FromRequest(r *http.Request) interfaces.FormSource {
	return &requestSource{r: r}
}

func (s *requestSource) Payload(ctx context.Context) (*model.FormPayload, error) {
	if err := s.r.ParseMultipartForm(defaultMaxMemory); err != nil && err != http.ErrNotMultipart {
		return nil, goerr.Wrap(err, "failed to parse multipart form")
	}
	if s.r.Form == nil {
		if err := s.r.ParseForm(); err != nil {
			return nil, goerr.Wrap(err, "failed to parse form")
		}
	}

	payload := model.NewFormPayload()
	for name, values := range s.r.PostForm {
		if len(values) > 0 {
			payload.Set(name, values[0])
		}
	}

	if s.r.MultipartForm == nil {
		return payload, nil
	}
	for field, headers := range s.r.MultipartForm.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				closeFiles(payload)
				return nil, goerr.Wrap(err, "failed to open uploaded file", goerr.V("field", field))
			}
			payload.AddFile(field, fh.Filename, f)
			payload.Files[len(payload.Files)-1].Size = fh.Size
		}
	}
	return payload, nil
}

func closeFiles(payload *model.FormPayload) {
	for _, f := range payload.Files {
		if c, ok := f.Content.(io.Closer); ok {
			_ = c.Close()
		}
	}
}
