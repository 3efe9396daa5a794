package interfaces

import (
	"context"

	"github.com/m-mizutani/dubbing/pkg/domain/model"
)

// FormSource yields the current form contents at submission time.
type FormSource interface {
	Payload(ctx context.Context) (*model.FormPayload, error)
}

// DownloadTarget displays the outcome of a successful submission. A later
// Render replaces the previous reference.
type DownloadTarget interface {
	Render(ctx context.Context, ref *model.DownloadReference)
}

// Alerter presents an error message to the user.
type Alerter interface {
	Alert(ctx context.Context, message string)
}
