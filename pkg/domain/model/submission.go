package model

import (
	"fmt"
	"io"
	"io/fs"
)

// FormFile is one binary part of a FormPayload. Size is -1 when the length of
// Content is not known up front. Content implementing io.Closer is closed
// once encoded.
type FormFile struct {
	Field    string
	Filename string
	Content  io.Reader
	Size     int64
}

// FormPayload is the snapshot of a form taken at submission time. Field order
// is not significant.
type FormPayload struct {
	Fields map[string]string
	Files  []FormFile
}

// NewFormPayload returns an empty payload ready for Set and AddFile.
func NewFormPayload() *FormPayload {
	return &FormPayload{Fields: make(map[string]string)}
}

// Set stores a plain form field, replacing any previous value.
func (p *FormPayload) Set(name, value string) {
	if p.Fields == nil {
		p.Fields = make(map[string]string)
	}
	p.Fields[name] = value
}

// AddFile appends a file part. The size is taken from content when it can
// report one (in-memory readers, files on disk).
func (p *FormPayload) AddFile(field, filename string, content io.Reader) {
	p.Files = append(p.Files, FormFile{
		Field:    field,
		Filename: filename,
		Content:  content,
		Size:     contentSize(content),
	})
}

func contentSize(r io.Reader) int64 {
	switch v := r.(type) {
	case nil:
		return 0
	case interface{ Len() int }:
		return int64(v.Len())
	case interface{ Stat() (fs.FileInfo, error) }:
		if info, err := v.Stat(); err == nil && info.Mode().IsRegular() {
			return info.Size()
		}
	case interface{ Size() int64 }:
		return v.Size()
	}
	return -1
}

// ServiceResponse is the JSON body returned by /dubbing_file/. A 200 carries
// UUID, anything else carries Error.
type ServiceResponse struct {
	UUID         string `json:"uuid,omitempty"`
	Error        string `json:"error,omitempty"`
	WaitingQueue string `json:"waiting_queue,omitempty"`
	Filename     string `json:"filename,omitempty"`
}

// DownloadReference is what a successful submission renders: the identifier
// as visible text and the link to the dubbed file.
type DownloadReference struct {
	Text string
	URL  string
}

// NewDownloadReference builds <base>/get_file?uuid=<id>&ext=dub. The id is
// used as returned by the service.
func NewDownloadReference(cfg ServiceConfig, id string) *DownloadReference {
	return &DownloadReference{
		Text: id,
		URL:  cfg.Endpoint(PathGetFile) + "?uuid=" + id + "&ext=" + ExtDubbed,
	}
}

// SubmissionResult is the single outcome of a successful submission.
type SubmissionResult struct {
	Response  *ServiceResponse
	Reference *DownloadReference
}

// ServiceError is a failure reported by the dubbing service itself.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("dubbing service returned %d: %s", e.StatusCode, e.Message)
}
