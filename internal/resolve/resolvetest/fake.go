// Package resolvetest provides a scripted bridge transport for tests.
package resolvetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/postflow/resolve-mcp/internal/errors"
	"github.com/postflow/resolve-mcp/internal/resolve"
)

// Call records one frame the fake received.
type Call struct {
	Handle string
	Method string
	Args   []any
}

// Handler produces the response for one method.
type Handler func(call Call) (*resolve.Response, error)

// Fake is a scripted Transport. Handlers are keyed by
// "handle.Method" first, then by bare method name, so a test can pin
// behavior to a specific object or answer a method globally.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
	closed   bool
}

// New creates an empty fake. Unscripted methods answer with a vendor
// error naming the method, which keeps missing stubs loud in tests.
func New() *Fake {
	return &Fake{handlers: map[string]Handler{}}
}

// Call implements resolve.Transport.
func (f *Fake) Call(_ context.Context, req *resolve.Request) (*resolve.Response, error) {
	f.mu.Lock()
	call := Call{Handle: req.Handle, Method: req.Method, Args: req.Args}
	f.calls = append(f.calls, call)
	h, ok := f.handlers[req.Handle+"."+req.Method]
	if !ok {
		h, ok = f.handlers[req.Method]
	}
	f.mu.Unlock()

	if req.Method == "__release__" && !ok {
		return &resolve.Response{ID: req.ID}, nil
	}
	if !ok {
		return &resolve.Response{ID: req.ID, Error: fmt.Sprintf("unscripted method %q", req.Method)}, nil
	}
	resp, err := h(call)
	if err != nil {
		return nil, err
	}
	resp.ID = req.ID
	return resp, nil
}

// Close implements resolve.Transport.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// On registers a handler for a method, optionally scoped as
// "handle.Method".
func (f *Fake) On(key string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[key] = h
	return f
}

// OnResult scripts a scalar/list/map result.
func (f *Fake) OnResult(key string, v any) *Fake {
	return f.On(key, func(Call) (*resolve.Response, error) {
		return &resolve.Response{Result: mustJSON(v)}, nil
	})
}

// OnHandle scripts an object-valued result.
func (f *Fake) OnHandle(key, handle string) *Fake {
	return f.On(key, func(Call) (*resolve.Response, error) {
		return &resolve.Response{Handle: handle}, nil
	})
}

// OnHandles scripts a list-of-objects result.
func (f *Fake) OnHandles(key string, handles ...string) *Fake {
	return f.On(key, func(Call) (*resolve.Response, error) {
		return &resolve.Response{Handles: handles}, nil
	})
}

// OnError scripts a vendor error. The real transport surfaces
// bridge-reported errors as Go errors, never in the Response, so the
// fake does the same.
func (f *Fake) OnError(key, message string) *Fake {
	return f.On(key, func(Call) (*resolve.Response, error) {
		return nil, errors.Vendor("resolvetest.Fake.Call", message)
	})
}

// OnVoid scripts an empty (void) response.
func (f *Fake) OnVoid(key string) *Fake {
	return f.On(key, func(Call) (*resolve.Response, error) {
		return &resolve.Response{}, nil
	})
}

// Calls returns every recorded frame.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns the recorded frames for one method.
func (f *Fake) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Connected scripts the full connection probe against a healthy
// instance: version 19.0.2, one project "Demo" with one timeline and
// one clip in the media pool root.
func Connected() *Fake {
	f := New()
	f.OnResult("GetVersionString", "19.0.2")
	f.OnHandle("GetProjectManager", "pm")
	f.OnResult("GetProjectListInCurrentFolder", []string{"Demo"})
	f.OnHandle("GetCurrentProject", "proj")
	f.OnResult("proj.GetName", "Demo")
	f.OnResult("GetTimelineCount", 1)
	f.OnHandle("GetCurrentTimeline", "tl")
	f.OnHandle("GetTimelineByIndex", "tl")
	f.OnHandle("GetMediaPool", "pool")
	f.OnHandle("GetRootFolder", "root")
	f.OnHandles("root.GetClipList", "clip1")
	return f
}

// NewClient builds a lazily connecting client over this fake.
func NewClient(f *Fake) (*resolve.Client, error) {
	return resolve.NewClient(resolve.Options{MinVersion: "18.0.0"}, resolve.WithTransport(f))
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
