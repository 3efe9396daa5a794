package model

import (
	"io"
	"mime/multipart"
	"sort"

	"github.com/m-mizutani/goerr/v2"
)

// EncodedBody is a multipart body produced while it is read.
type EncodedBody struct {
	io.ReadCloser
	ContentType string
	// Length is the exact body size, or -1 when a file size is unknown.
	Length int64
}

// Stream renders the payload as a multipart/form-data body. Encoding runs
// through a pipe so file contents are copied straight to the reader instead
// of being buffered; they are consumed and closed. The body must be read to
// the end or closed, otherwise the encoding goroutine stays blocked.
func (p *FormPayload) Stream() *EncodedBody {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	length := p.encodedLength(writer.Boundary())

	go func() {
		pw.CloseWithError(p.writeTo(writer))
	}()

	return &EncodedBody{
		ReadCloser:  pr,
		ContentType: writer.FormDataContentType(),
		Length:      length,
	}
}

func (p *FormPayload) fieldNames() []string {
	names := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// writeTo writes every field and file and closes writer. File contents are
// closed even when writing fails.
func (p *FormPayload) writeTo(writer *multipart.Writer) error {
	defer p.closeFiles()

	for _, name := range p.fieldNames() {
		if err := writer.WriteField(name, p.Fields[name]); err != nil {
			return goerr.Wrap(err, "failed to write form field", goerr.V("field", name))
		}
	}

	for _, f := range p.Files {
		part, err := writer.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return goerr.Wrap(err, "failed to create form file", goerr.V("field", f.Field))
		}
		if f.Content == nil {
			continue
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return goerr.Wrap(err, "failed to copy file content",
				goerr.V("field", f.Field),
				goerr.V("filename", f.Filename),
			)
		}
	}

	if err := writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to close multipart writer")
	}
	return nil
}

func (p *FormPayload) closeFiles() {
	for _, f := range p.Files {
		if c, ok := f.Content.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

// encodedLength computes the size of the body writeTo produces with the given
// boundary, or -1 if any file size is unknown.
func (p *FormPayload) encodedLength(boundary string) int64 {
	var counter byteCounter
	writer := multipart.NewWriter(&counter)
	if err := writer.SetBoundary(boundary); err != nil {
		return -1
	}

	var files int64
	for _, name := range p.fieldNames() {
		if err := writer.WriteField(name, p.Fields[name]); err != nil {
			return -1
		}
	}
	for _, f := range p.Files {
		if f.Size < 0 {
			return -1
		}
		if _, err := writer.CreateFormFile(f.Field, f.Filename); err != nil {
			return -1
		}
		files += f.Size
	}
	if err := writer.Close(); err != nil {
		return -1
	}
	return counter.n + files
}

type byteCounter struct {
	n int64
}

func (c *byteCounter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
