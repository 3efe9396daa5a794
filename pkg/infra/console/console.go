package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/m-mizutani/dubbing/pkg/domain/model"
)

// Link renders download references to a terminal and remembers the last one.
type Link struct {
	mu  sync.Mutex
	w   io.Writer
	ref *model.DownloadReference
}

// NewLink returns a Link writing to w
func NewLink(w io.Writer) *Link {
	return &Link{w: w}
}

// Render replaces the current reference and prints it
func (l *Link) Render(ctx context.Context, ref *model.DownloadReference) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ref = ref
	fmt.Fprintf(l.w, "%s %s\n", color.GreenString("uuid:"), ref.Text)
	fmt.Fprintf(l.w, "%s %s\n", color.GreenString("download:"), color.CyanString(ref.URL))
}

// Current returns the last rendered reference, or nil before the first one
func (l *Link) Current() *model.DownloadReference {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ref
}

// Alert prints error messages in red
type Alert struct {
	mu sync.Mutex
	w  io.Writer
}

// NewAlert returns an Alert writing to w
func NewAlert(w io.Writer) *Alert {
	return &Alert{w: w}
}

func (a *Alert) Alert(ctx context.Context, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.w, "%s %s\n", color.RedString("error:"), message)
}
