package interfaces

import (
	"context"

	"github.com/m-mizutani/dubbing/pkg/domain/model"
)

// Transport performs asynchronous HTTP exchanges. Send returns immediately;
// the observer is then called for every state change and finally once with
// model.StateDone.
type Transport interface {
	Send(ctx context.Context, req *model.Request, observer model.StateObserver)
}
