package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/felixgeelhaar/statekit"

	"github.com/postflow/resolve-mcp/internal/errors"
)

// Lifecycle states of the client.
const (
	StateDisconnected statekit.StateID = "disconnected"
	StateConnecting   statekit.StateID = "connecting"
	StateConnected    statekit.StateID = "connected"
	StateDegraded     statekit.StateID = "degraded"
	StateClosed       statekit.StateID = "closed"
)

// Lifecycle events.
const (
	eventConnect   statekit.EventType = "CONNECT"
	eventConnected statekit.EventType = "CONNECTED"
	eventDegrade   statekit.EventType = "DEGRADE"
	eventFail      statekit.EventType = "FAIL"
	eventClose     statekit.EventType = "CLOSE"
)

func newLifecycleMachine() (*statekit.Interpreter[struct{}], error) {
	machine, err := statekit.NewMachine[struct{}]("resolve-client").
		WithInitial(StateDisconnected).
		State(StateDisconnected).
		On(eventConnect).Target(StateConnecting).
		On(eventClose).Target(StateClosed).
		Done().
		State(StateConnecting).
		On(eventConnected).Target(StateConnected).
		On(eventDegrade).Target(StateDegraded).
		On(eventFail).Target(StateDisconnected).
		On(eventClose).Target(StateClosed).
		Done().
		State(StateConnected).
		On(eventFail).Target(StateDisconnected).
		On(eventClose).Target(StateClosed).
		Done().
		State(StateDegraded).
		On(eventFail).Target(StateDisconnected).
		On(eventClose).Target(StateClosed).
		Done().
		State(StateClosed).
		Final().
		Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("building lifecycle machine: %w", err)
	}
	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return interp, nil
}

// TransportFactory opens a transport on demand, so the client can be
// constructed without a running Resolve instance.
type TransportFactory func(ctx context.Context) (Transport, error)

// Options configures a Client.
type Options struct {
	// FuscriptPath overrides fuscript discovery.
	FuscriptPath string
	// ConnectTimeout bounds the connect handshake and probe.
	ConnectTimeout time.Duration
	// CallTimeout bounds each individual vendor call.
	CallTimeout time.Duration
	// MinVersion is the minimum supported Resolve version. An older
	// instance connects in degraded mode.
	MinVersion string
}

// Option mutates a Client at construction time.
type Option func(*Client)

// WithTransport injects a ready transport, bypassing fuscript startup.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.factory = func(context.Context) (Transport, error) { return t, nil }
	}
}

// WithTransportFactory injects a transport factory.
func WithTransportFactory(f TransportFactory) Option {
	return func(c *Client) { c.factory = f }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client is a lazily connected handle on a running Resolve instance.
// The zero value is not usable; construct with NewClient. All methods
// are safe for concurrent use, though calls serialize on the bridge.
type Client struct {
	mu      sync.Mutex
	opts    Options
	factory TransportFactory
	logger  *slog.Logger

	transport Transport
	machine   *statekit.Interpreter[struct{}]
	caps      Capabilities
	version   string
}

// NewClient creates a client. No connection is attempted until the
// first call or an explicit Connect.
func NewClient(opts Options, options ...Option) (*Client, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 30 * time.Second
	}

	machine, err := newLifecycleMachine()
	if err != nil {
		return nil, errors.InternalWrap(err, "resolve.NewClient", "lifecycle machine")
	}

	c := &Client{
		opts:    opts,
		logger:  slog.Default(),
		machine: machine,
	}
	c.factory = func(ctx context.Context) (Transport, error) {
		return NewScriptTransport(ctx, opts.FuscriptPath)
	}
	for _, o := range options {
		o(c)
	}
	return c, nil
}

// State returns the current lifecycle state.
func (c *Client) State() statekit.StateID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State().Value
}

// Connected reports whether the client holds a live connection,
// degraded or not.
func (c *Client) Connected() bool {
	s := c.State()
	return s == StateConnected || s == StateDegraded
}

// Capabilities returns the probe result of the current connection.
func (c *Client) Capabilities() Capabilities {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caps
}

// Version returns the product version string of the connected instance.
func (c *Client) Version() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Connect establishes the bridge connection and runs the capability
// probe. Calling Connect on a connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	const op = "resolve.Client.Connect"

	switch c.machine.State().Value {
	case StateConnected, StateDegraded:
		return nil
	case StateClosed:
		return errors.Connection(op, "client is closed")
	}

	c.machine.Send(statekit.Event{Type: eventConnect})

	ctx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()

	transport, err := c.factory(ctx)
	if err != nil {
		c.machine.Send(statekit.Event{Type: eventFail})
		return err
	}
	c.transport = transport

	if err := c.probeLocked(ctx); err != nil {
		c.machine.Send(statekit.Event{Type: eventFail})
		c.transport.Close()
		c.transport = nil
		return err
	}

	if c.versionTooOld() {
		c.logger.Warn("resolve version below minimum, connecting degraded",
			"version", c.version, "min_version", c.opts.MinVersion)
		c.machine.Send(statekit.Event{Type: eventDegrade})
	} else {
		c.machine.Send(statekit.Event{Type: eventConnected})
	}

	c.logger.Info("connected to resolve",
		"version", c.version,
		"capabilities", c.caps.Count(),
		"state", string(c.machine.State().Value))
	return nil
}

// versionTooOld compares the probed version against MinVersion. An
// unparseable version string never degrades the connection.
func (c *Client) versionTooOld() bool {
	if c.opts.MinVersion == "" || c.version == "" {
		return false
	}
	minimum, err := semver.NewVersion(c.opts.MinVersion)
	if err != nil {
		return false
	}
	current, err := semver.NewVersion(c.version)
	if err != nil {
		return false
	}
	return current.LessThan(minimum)
}

// probeLocked records which vendor entry points respond. Probe
// failures are recorded, not fatal; only a dead transport aborts.
func (c *Client) probeLocked(ctx context.Context) error {
	const op = "resolve.Client.probe"

	version, err := c.rawString(ctx, "", "GetVersionString")
	if err != nil {
		if errors.IsKind(err, errors.KindConnection) || errors.IsKind(err, errors.KindTimeout) {
			return errors.Wrap(err, errors.KindConnection, op, "bridge handshake failed")
		}
	}
	c.version = version

	caps := Capabilities{}

	pm, err := c.rawHandle(ctx, "", "GetProjectManager")
	if err == nil && pm != "" {
		caps.GetProjectManager = true
		defer c.rawRelease(ctx, pm)

		if _, err := c.rawCall(ctx, pm, "GetProjectListInCurrentFolder"); err == nil {
			caps.GetProjectList = true
		}

		project, err := c.rawHandle(ctx, pm, "GetCurrentProject")
		if err == nil && project != "" {
			caps.GetCurrentProject = true
			defer c.rawRelease(ctx, project)

			if _, err := c.rawString(ctx, project, "GetName"); err == nil {
				caps.GetProjectName = true
			}
			count := 0
			if resp, err := c.rawCall(ctx, project, "GetTimelineCount"); err == nil {
				caps.GetTimelineNames = true
				_ = decodeResult(resp, &count)
			}
			if tl, err := c.rawHandle(ctx, project, "GetCurrentTimeline"); err == nil && tl != "" {
				caps.GetCurrentTimeline = true
				c.rawRelease(ctx, tl)
			}
			if count > 0 {
				if tl, err := c.rawHandle(ctx, project, "GetTimelineByIndex", 1); err == nil && tl != "" {
					caps.GetTimelineByIndex = true
					c.rawRelease(ctx, tl)
				}
			}
			if pool, err := c.rawHandle(ctx, project, "GetMediaPool"); err == nil && pool != "" {
				caps.GetMediaPool = true
				defer c.rawRelease(ctx, pool)

				if folder, err := c.rawHandle(ctx, pool, "GetRootFolder"); err == nil && folder != "" {
					caps.GetRootFolder = true
					defer c.rawRelease(ctx, folder)

					if _, err := c.rawCall(ctx, folder, "GetClipList"); err == nil {
						caps.GetClipList = true
					}
				}
			}
		}
	}

	c.caps = caps
	return nil
}

// Close tears down the connection. The client cannot be reused.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.machine.Send(statekit.Event{Type: eventClose})
	if c.transport != nil {
		err := c.transport.Close()
		c.transport = nil
		return err
	}
	return nil
}

// call runs one vendor call, lazily connecting first.
func (c *Client) call(ctx context.Context, handle, method string, args ...any) (*Response, error) {
	c.mu.Lock()
	if err := c.connectLocked(ctx); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	transport := c.transport
	timeout := c.opts.CallTimeout
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return transport.Call(ctx, &Request{Handle: handle, Method: method, Args: args})
}

// Raw call helpers used by the probe before typed wrappers exist.
// They assume the caller holds c.mu and a transport is present.

func (c *Client) rawCall(ctx context.Context, handle, method string, args ...any) (*Response, error) {
	return c.transport.Call(ctx, &Request{Handle: handle, Method: method, Args: args})
}

func (c *Client) rawHandle(ctx context.Context, handle, method string, args ...any) (string, error) {
	resp, err := c.rawCall(ctx, handle, method, args...)
	if err != nil {
		return "", err
	}
	return resp.Handle, nil
}

func (c *Client) rawString(ctx context.Context, handle, method string, args ...any) (string, error) {
	resp, err := c.rawCall(ctx, handle, method, args...)
	if err != nil {
		return "", err
	}
	var s string
	if err := decodeResult(resp, &s); err != nil {
		return "", err
	}
	return s, nil
}

func (c *Client) rawRelease(ctx context.Context, handle string) {
	_, _ = c.rawCall(ctx, handle, releaseMethod)
}

// release frees a bridge-side handle. Errors are ignored; a leaked
// handle dies with the bridge process.
func (c *Client) release(ctx context.Context, handle string) {
	if handle == "" {
		return
	}
	_, _ = c.call(ctx, handle, releaseMethod)
}

// decodeResult unmarshals a response result into target. A missing
// result decodes to the zero value.
func decodeResult(resp *Response, target any) error {
	if resp.Result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, target); err != nil {
		return errors.InternalWrap(err, "resolve.decodeResult", "decoding vendor result")
	}
	return nil
}
