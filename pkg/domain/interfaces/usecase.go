package interfaces

import (
	"context"
	"io"

	"github.com/m-mizutani/dubbing/pkg/domain/model"
	"github.com/m-mizutani/dubbing/pkg/utils/async"
)

// SubmissionUseCase uploads a form to the dubbing service
type SubmissionUseCase interface {
	// Submit dispatches the upload and returns a future resolved on completion
	Submit(ctx context.Context) (*async.Future[*model.SubmissionResult], error)
}

// FetcherUseCase performs plain GET requests
type FetcherUseCase interface {
	// Get calls callback with the body once, only when the request ends with HTTP 200
	Get(ctx context.Context, url string, callback func(body string))
}

// FilesUseCase defines operations on files already submitted to the service
type FilesUseCase interface {
	Exists(ctx context.Context, id string) (*model.FileStatus, error)
	Download(ctx context.Context, id, ext string, w io.Writer) (*model.DownloadedFile, error)
	SendFeedback(ctx context.Context, feedback *model.Feedback) error
}

// InfoUseCase reads service-wide information
type InfoUseCase interface {
	// Stats returns statistics for a YYYY-MM-DD date, today when empty
	Stats(ctx context.Context, date string) (*model.Stats, error)
	Voices(ctx context.Context) ([]byte, error)
}
