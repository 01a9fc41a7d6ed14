// Package resolve bridges the adapter to a running DaVinci Resolve
// instance. The vendor scripting API is only reachable through
// Resolve's own scripting shim, so the bridge drives a spawned fuscript
// helper process over newline-delimited JSON. Vendor objects stay on
// the bridge side and are referenced from Go by opaque handle IDs.
package resolve

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/google/uuid"

	"github.com/postflow/resolve-mcp/internal/errors"
)

// Request is one call frame sent to the bridge. An empty Handle
// addresses the root application object.
type Request struct {
	ID     string `json:"id"`
	Handle string `json:"handle,omitempty"`
	Method string `json:"method"`
	Args   []any  `json:"args,omitempty"`
}

// Response is one reply frame from the bridge. Exactly one of Result,
// Handle, Handles or Error is populated; a void call carries none.
type Response struct {
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Handle  string          `json:"handle,omitempty"`
	Handles []string        `json:"handles,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Transport carries call frames to the scripting bridge.
type Transport interface {
	Call(ctx context.Context, req *Request) (*Response, error)
	Close() error
}

// releaseMethod frees a bridge-side handle.
const releaseMethod = "__release__"

//go:embed bridge.py
var bridgeScript []byte

// ScriptTransport runs the bridge helper as a fuscript subprocess.
// A single reader goroutine demultiplexes reply frames into per-call
// channels keyed by request ID, so a call abandoned on context
// timeout just drops its pending entry and the next call still
// receives its own reply.
type ScriptTransport struct {
	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	pending map[string]chan callReply
	readErr error
	closed  bool
}

// callReply is what the reader goroutine delivers to a waiting call.
type callReply struct {
	resp *Response
	err  error
}

// NewScriptTransport spawns the bridge process. When fuscriptPath is
// empty, OS-specific install locations are probed.
func NewScriptTransport(ctx context.Context, fuscriptPath string) (*ScriptTransport, error) {
	const op = "resolve.NewScriptTransport"

	path, err := findFuscript(fuscriptPath)
	if err != nil {
		return nil, err
	}

	script, err := writeBridgeScript()
	if err != nil {
		return nil, errors.IOWrap(err, op, "staging bridge script")
	}

	cmd := exec.CommandContext(ctx, path, "-l", "py3", script)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.ConnectionWrap(err, op, "opening bridge stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.ConnectionWrap(err, op, "opening bridge stdout")
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.ConnectionWrap(err, op, "starting bridge process")
	}

	t := &ScriptTransport{
		cmd:     cmd,
		stdin:   stdin,
		pending: make(map[string]chan callReply),
	}
	go t.readLoop(bufio.NewReader(stdout))
	return t, nil
}

// writeBridgeScript stages the embedded bridge helper in a temp file
// for fuscript to execute.
func writeBridgeScript() (string, error) {
	f, err := os.CreateTemp("", "resolve-mcp-bridge-*.py")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(bridgeScript); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// readLoop is the only reader of the bridge stdout. It routes each
// reply frame to the pending call with the matching ID; frames for
// abandoned calls are dropped. A read or decode failure poisons the
// transport and fails every in-flight call.
func (t *ScriptTransport) readLoop(stdout *bufio.Reader) {
	const op = "resolve.ScriptTransport.read"
	for {
		line, err := stdout.ReadBytes('\n')
		if err != nil {
			t.failPending(errors.ConnectionWrap(err, op, "reading from bridge"))
			return
		}
		var resp Response
		if err := json.Unmarshal(line, &resp); err != nil {
			t.failPending(errors.ConnectionWrap(err, op, "decoding bridge frame"))
			return
		}

		t.mu.Lock()
		ch, ok := t.pending[resp.ID]
		if ok {
			delete(t.pending, resp.ID)
		}
		t.mu.Unlock()
		if ok {
			ch <- callReply{resp: &resp}
		}
	}
}

// failPending records the terminal read error and delivers it to every
// call still waiting for a reply.
func (t *ScriptTransport) failPending(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.readErr = err
	for id, ch := range t.pending {
		delete(t.pending, id)
		ch <- callReply{err: err}
	}
}

// Call sends one frame and waits for its reply. The context deadline
// is honored by abandoning the wait; the reader drops the bridge
// reply for an abandoned call when it eventually arrives.
func (t *ScriptTransport) Call(ctx context.Context, req *Request) (*Response, error) {
	const op = "resolve.ScriptTransport.Call"

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, errors.Connection(op, "transport is closed")
	}
	if t.readErr != nil {
		err := t.readErr
		t.mu.Unlock()
		return nil, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	frame, err := json.Marshal(req)
	if err != nil {
		t.mu.Unlock()
		return nil, errors.InternalWrap(err, op, "encoding request frame")
	}
	frame = append(frame, '\n')

	ch := make(chan callReply, 1)
	t.pending[req.ID] = ch

	// Writes stay under the lock; frames must not interleave.
	if _, err := t.stdin.Write(frame); err != nil {
		delete(t.pending, req.ID)
		t.mu.Unlock()
		return nil, errors.ConnectionWrap(err, op, "writing to bridge")
	}
	t.mu.Unlock()

	select {
	case <-ctx.Done():
		t.mu.Lock()
		delete(t.pending, req.ID)
		t.mu.Unlock()
		return nil, errors.TimeoutWrap(ctx.Err(), op, fmt.Sprintf("calling %s", req.Method))
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if r.resp.Error != "" {
			return nil, errors.Vendor(op, r.resp.Error).WithDetail("method", req.Method)
		}
		return r.resp, nil
	}
}

// Close shuts down the bridge process.
func (t *ScriptTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.stdin.Close()
	if t.cmd != nil {
		if t.cmd.Process != nil {
			_ = t.cmd.Process.Kill()
		}
		_ = t.cmd.Wait()
	}
	return nil
}
