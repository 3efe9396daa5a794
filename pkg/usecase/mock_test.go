package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/m-mizutani/dubbing/pkg/domain/model"
)

// MockTransport replays scripted notifications synchronously
type MockTransport struct {
	mu       sync.Mutex
	requests []*model.Request
	sendFunc func(req *model.Request) []*model.StateChange
}

func (m *MockTransport) Send(ctx context.Context, req *model.Request, observer model.StateObserver) {
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if c, ok := req.Body.(io.Closer); ok {
			_ = c.Close()
		}
		if err != nil {
			observer(ctx, &model.StateChange{State: model.StateDone, Err: err})
			return
		}
		req.Body = bytes.NewReader(data)
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.sendFunc == nil {
		observer(ctx, &model.StateChange{State: model.StateDone, Err: errors.New("mock not configured")})
		return
	}
	for _, change := range m.sendFunc(req) {
		observer(ctx, change)
	}
}

func (m *MockTransport) Requests() []*model.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// lifecycle returns the usual notification sequence ending in a terminal state
func lifecycle(status int, body string) []*model.StateChange {
	return []*model.StateChange{
		{State: model.StateOpened},
		{State: model.StateHeadersReceived, StatusCode: status},
		{State: model.StateLoading, StatusCode: status},
		{State: model.StateDone, StatusCode: status, Body: []byte(body)},
	}
}

// MockForm returns a fixed payload
type MockForm struct {
	payloadFunc func(ctx context.Context) (*model.FormPayload, error)
}

func (m *MockForm) Payload(ctx context.Context) (*model.FormPayload, error) {
	if m.payloadFunc != nil {
		return m.payloadFunc(ctx)
	}
	p := model.NewFormPayload()
	p.Set("email", "user@example.org")
	return p, nil
}

// MockTarget records rendered references
type MockTarget struct {
	renders []*model.DownloadReference
}

func (m *MockTarget) Render(ctx context.Context, ref *model.DownloadReference) {
	m.renders = append(m.renders, ref)
}

// Current is the reference a user would see now, or nil
func (m *MockTarget) Current() *model.DownloadReference {
	if len(m.renders) == 0 {
		return nil
	}
	return m.renders[len(m.renders)-1]
}

// MockAlerter records alert messages
type MockAlerter struct {
	messages []string
}

func (m *MockAlerter) Alert(ctx context.Context, message string) {
	m.messages = append(m.messages, message)
}
