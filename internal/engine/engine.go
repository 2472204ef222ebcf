// Package engine validates account settings against real mail servers.
package engine

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	gologme "github.com/gologme/log"
	"go.uber.org/atomic"

	"github.com/nhle/mailsettings/internal/logging"
	"github.com/nhle/mailsettings/internal/model"
)

// Prober checks that a server accepts the credentials of profile. It
// returns capability tokens that are passed back in the response payload.
type Prober interface {
	Probe(ctx context.Context, profile model.ServerProfile) ([]string, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, profile model.ServerProfile) ([]string, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, profile model.ServerProfile) ([]string, error) {
	return f(ctx, profile)
}

// Engine runs account validations in the background. Every handle returned
// by Validate gets exactly one response on Responses, unless the engine is
// closed first.
type Engine struct {
	timeout     time.Duration
	dialTimeout time.Duration
	localName   string
	logger      *gologme.Logger

	incoming map[model.ServerType]Prober
	outgoing Prober

	seq    atomic.Int64
	closed atomic.Bool

	mu      sync.Mutex
	running map[model.ValidationHandle]context.CancelFunc
	wg      sync.WaitGroup

	responses chan model.ValidationResponse
	done      chan struct{}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger overrides the logger used for engine diagnostics.
func WithLogger(logger *gologme.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTimeout bounds one whole validation, incoming and outgoing.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// WithDialTimeout overrides the socket dial timeout of the default probers.
func WithDialTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		if timeout > 0 {
			e.dialTimeout = timeout
		}
	}
}

// WithLocalName sets the host name sent in the SMTP greeting.
func WithLocalName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.localName = name
		}
	}
}

// WithIncomingProber replaces the prober used for incoming servers of type t.
func WithIncomingProber(t model.ServerType, p Prober) Option {
	return func(e *Engine) {
		if p != nil {
			e.incoming[t] = p
		}
	}
}

// WithOutgoingProber replaces the prober used for the outgoing server.
func WithOutgoingProber(p Prober) Option {
	return func(e *Engine) {
		if p != nil {
			e.outgoing = p
		}
	}
}

// New returns an engine with IMAP, POP3 and SMTP probers.
func New(opts ...Option) *Engine {
	e := &Engine{
		timeout:     60 * time.Second,
		dialTimeout: 10 * time.Second,
		localName:   "localhost",
		logger:      logging.Discard(),
		incoming:    make(map[model.ServerType]Prober),
		running:     make(map[model.ValidationHandle]context.CancelFunc),
		responses:   make(chan model.ValidationResponse, 16),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	if _, ok := e.incoming[model.ServerTypeIMAP]; !ok {
		e.incoming[model.ServerTypeIMAP] = NewIMAPProber(e.dialTimeout)
	}
	if _, ok := e.incoming[model.ServerTypePOP3]; !ok {
		e.incoming[model.ServerTypePOP3] = NewPOP3Prober(e.dialTimeout)
	}
	if e.outgoing == nil {
		e.outgoing = NewSMTPProber(e.dialTimeout, e.localName)
	}
	return e
}

// NewFromConfig returns an engine configured from cfg.
func NewFromConfig(cfg model.ValidationConfig, logger *gologme.Logger, opts ...Option) *Engine {
	base := []Option{
		WithLogger(logger),
		WithTimeout(time.Duration(cfg.TimeoutSec) * time.Second),
		WithDialTimeout(time.Duration(cfg.DialTimeoutSec) * time.Second),
		WithLocalName(cfg.LocalName),
	}
	return New(append(base, opts...)...)
}

// Responses delivers validation results. The channel is closed by Close.
func (e *Engine) Responses() <-chan model.ValidationResponse {
	return e.responses
}

// Validate starts validating draft in the background and returns the
// handle its response will carry.
func (e *Engine) Validate(ctx context.Context, draft model.AccountDraft) (model.ValidationHandle, error) {
	if _, ok := e.incoming[draft.Incoming.Type]; !ok {
		return model.NoHandle, fmt.Errorf("unsupported incoming server type %q", draft.Incoming.Type)
	}

	handle := model.ValidationHandle(e.seq.Inc())
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)

	e.mu.Lock()
	if e.closed.Load() {
		e.mu.Unlock()
		cancel()
		return model.NoHandle, ErrClosed
	}
	e.running[handle] = cancel
	e.wg.Add(1)
	e.mu.Unlock()

	e.logger.Infof("validation %d started for %s (%s %s, %s %s)",
		handle, draft.Address,
		draft.Incoming.Type, address(draft.Incoming),
		draft.Outgoing.Type, address(draft.Outgoing))

	go e.run(runCtx, handle, draft)
	return handle, nil
}

// Cancel aborts the validation for handle. Its response carries
// model.CodeCancelled. Unknown or finished handles are ignored.
func (e *Engine) Cancel(handle model.ValidationHandle) {
	e.mu.Lock()
	cancel, ok := e.running[handle]
	e.mu.Unlock()
	if ok {
		e.logger.Infof("validation %d cancelled", handle)
		cancel()
	}
}

// Close cancels all running validations, waits for them and closes the
// responses channel. Undelivered responses are dropped.
func (e *Engine) Close() {
	e.mu.Lock()
	if !e.closed.CompareAndSwap(false, true) {
		e.mu.Unlock()
		return
	}
	for _, cancel := range e.running {
		cancel()
	}
	e.mu.Unlock()

	close(e.done)
	e.wg.Wait()
	close(e.responses)
}

func (e *Engine) run(ctx context.Context, handle model.ValidationHandle, draft model.AccountDraft) {
	defer e.wg.Done()

	code, payload := e.validate(ctx, handle, draft)

	e.mu.Lock()
	if cancel, ok := e.running[handle]; ok {
		cancel()
		delete(e.running, handle)
	}
	e.mu.Unlock()

	resp := model.ValidationResponse{Handle: handle, Code: code, Payload: payload}
	select {
	case e.responses <- resp:
	case <-e.done:
	}
}

func (e *Engine) validate(ctx context.Context, handle model.ValidationHandle, draft model.AccountDraft) (int, string) {
	var tokens []string

	in, err := probe(ctx, e.incoming[draft.Incoming.Type], draft.Incoming)
	if code := incomingCode(err); code != model.CodeNone {
		e.logger.Warnf("validation %d: incoming %s failed (code %d): %v", handle, address(draft.Incoming), code, err)
		return code, ""
	}
	tokens = append(tokens, in...)

	out, err := probe(ctx, e.outgoing, draft.Outgoing)
	if code := outgoingCode(err); code != model.CodeNone {
		e.logger.Warnf("validation %d: outgoing %s failed (code %d): %v", handle, address(draft.Outgoing), code, err)
		return code, payload(tokens)
	}
	tokens = append(tokens, out...)

	e.logger.Infof("validation %d succeeded", handle)
	return model.CodeNone, payload(tokens)
}

// probe runs p and gives up as soon as ctx is done, even when the prober
// itself is blocked on the network.
func probe(ctx context.Context, p Prober, profile model.ServerProfile) ([]string, error) {
	type result struct {
		tokens []string
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		tokens, err := p.Probe(ctx, profile)
		ch <- result{tokens, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return r.tokens, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func payload(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	return strings.Join(tokens, " ") + " "
}

// address returns host:port for profile, filling in the conventional port
// when none is set.
func address(profile model.ServerProfile) string {
	port := profile.Port
	if port == 0 {
		port = defaultPort(profile)
	}
	return net.JoinHostPort(profile.Host, strconv.Itoa(port))
}

func defaultPort(profile model.ServerProfile) int {
	ssl := profile.Security == model.SecuritySSL
	switch profile.Type {
	case model.ServerTypePOP3:
		if ssl {
			return 995
		}
		return 110
	case model.ServerTypeSMTP:
		if ssl {
			return 465
		}
		return 587
	default:
		if ssl {
			return 993
		}
		return 143
	}
}
