// Package resolver implements the dual-transport resolver socket of
// spec.md §4.2: given a DNS message it encodes and transmits it to a
// configured server and delivers the matching response, retrying on UDP
// timeout and using TCP outright for UPDATE messages or messages whose
// encoded length exceeds 512 bytes.
package resolver

import (
	"context"
	goerrors "errors"
	"net"
	"sync"
	"time"

	"github.com/arrowhead-f/go-configuration-core/internal/errors"
	"github.com/arrowhead-f/go-configuration-core/internal/message"
	"github.com/arrowhead-f/go-configuration-core/internal/transport"
)

// maxUDPMessageSize is the point past which spec.md §4.2 requires TCP.
const maxUDPMessageSize = 512

type socketState int

const (
	stateIdle socketState = iota
	stateOpening
	stateReady
)

type task struct {
	id            uint16
	packet        []byte
	retriesLeft   int
	timestampSent time.Time
	resultCh      chan taskResult
}

type taskResult struct {
	msg *message.Message
	err error
}

// transportConn holds the per-transport lifecycle state machine from
// spec.md §4.2's state table: Idle, Opening, Ready.
type transportConn struct {
	useTCP bool

	mu       sync.Mutex
	state    socketState
	conn     transport.Transport
	outbound []*task
	inbound  map[uint16]*task

	closeTimer *time.Timer
}

type dialer func(ctx context.Context, server string, useTCP bool) (transport.Transport, error)

func defaultDialer(ctx context.Context, server string, useTCP bool) (transport.Transport, error) {
	if useTCP {
		return transport.NewTCP(ctx, server)
	}
	return transport.NewUDP(server)
}

// Resolver is the resolver socket: one Resolver talks to one configured
// server, maintaining independent UDP and TCP transport state machines.
type Resolver struct {
	server      string
	timeout     time.Duration
	keepOpenFor time.Duration
	onUnhandled func(error)
	dial        dialer

	udp *transportConn
	tcp *transportConn

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Resolver targeting server ("host:port"). The background
// retry/timeout scan starts immediately; sockets themselves open lazily on
// first Send, per spec.md §4.2's lifecycle rules.
func New(server string, opts ...Option) *Resolver {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Resolver{
		server:      server,
		timeout:     2 * time.Second,
		keepOpenFor: 30 * time.Second,
		onUnhandled: func(error) {},
		dial:        defaultDialer,
		udp:         &transportConn{useTCP: false, inbound: make(map[uint16]*task)},
		tcp:         &transportConn{useTCP: true, inbound: make(map[uint16]*task)},
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.scanLoop()

	return r
}

// Send transmits msg and blocks until the matching response arrives, the
// task fails, or ctx is done.
func (r *Resolver) Send(ctx context.Context, msg *message.Message) (*message.Message, error) {
	packet, err := message.Encode(msg)
	if err != nil {
		return nil, err
	}

	useTCP := msg.Header.Opcode == message.OpcodeUpdate || len(packet) > maxUDPMessageSize
	retries := 0
	if !useTCP {
		retries = 2
	}

	tc := r.udp
	if useTCP {
		tc = r.tcp
	}

	t := &task{
		id:          msg.Header.ID,
		packet:      packet,
		retriesLeft: retries,
		resultCh:    make(chan taskResult, 1),
	}

	if err := r.enqueue(tc, t); err != nil {
		return nil, err
	}

	select {
	case res := <-t.resultCh:
		return res.msg, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.ctx.Done():
		return nil, &errors.ResolverError{Kind: errors.Other, Op: "send", Err: r.ctx.Err()}
	}
}

// enqueue implements spec.md §4.2's identifier discipline and the Idle/
// Opening/Ready transitions triggered by a new task.
func (r *Resolver) enqueue(tc *transportConn, t *task) error {
	tc.mu.Lock()

	if _, exists := tc.inbound[t.id]; exists {
		tc.mu.Unlock()
		return &errors.ResolverError{Kind: errors.RequestIDInUse, Op: "enqueue"}
	}
	tc.inbound[t.id] = t
	r.stopCloseTimerLocked(tc)

	switch tc.state {
	case stateIdle:
		tc.state = stateOpening
		tc.outbound = append(tc.outbound, t)
		tc.mu.Unlock()
		go r.openSocket(tc)
	case stateOpening:
		tc.outbound = append(tc.outbound, t)
		tc.mu.Unlock()
	case stateReady:
		tc.mu.Unlock()
		r.writeTask(tc, t)
	}
	return nil
}

// openSocket dials the transport's socket and, on success, flushes the
// outbound queue and starts the reader loop; on failure it rejects every
// task queued so far with kind Other, per spec.md §4.2's error propagation
// rule.
func (r *Resolver) openSocket(tc *transportConn) {
	conn, err := r.dial(r.ctx, r.server, tc.useTCP)

	tc.mu.Lock()
	if err != nil {
		pending := tc.outbound
		tc.outbound = nil
		failed := make(map[uint16]*task, len(tc.inbound))
		for id, t := range tc.inbound {
			failed[id] = t
		}
		tc.inbound = make(map[uint16]*task)
		tc.state = stateIdle
		tc.mu.Unlock()

		rerr := &errors.ResolverError{Kind: errors.Other, Op: "open socket", Err: err}
		for _, t := range pending {
			t.resultCh <- taskResult{err: rerr}
		}
		for _, t := range failed {
			select {
			case t.resultCh <- taskResult{err: rerr}:
			default:
			}
		}
		r.onUnhandled(rerr)
		return
	}

	tc.conn = conn
	tc.state = stateReady
	pending := tc.outbound
	tc.outbound = nil
	tc.mu.Unlock()

	r.wg.Add(1)
	go r.readLoop(tc)

	for _, t := range pending {
		r.writeTask(tc, t)
	}
	r.maybeScheduleClose(tc)
}

// writeTask sends a single task's packet over an already-open transport.
// A send failure is a socket-level error: it kills the whole transport.
func (r *Resolver) writeTask(tc *transportConn, t *task) {
	tc.mu.Lock()
	conn := tc.conn
	tc.mu.Unlock()
	if conn == nil {
		return
	}

	ctx := r.ctx
	var cancel context.CancelFunc
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(r.ctx, r.timeout)
		defer cancel()
	}

	if err := conn.Send(ctx, t.packet); err != nil {
		r.failTransport(tc, &errors.ResolverError{Kind: errors.Other, Op: "send", Err: err})
		return
	}

	tc.mu.Lock()
	t.timestampSent = time.Now()
	tc.mu.Unlock()
}

// readLoop receives response datagrams/frames for one transport, matching
// each to its in-flight task by message id. It exits when the transport is
// closed (state leaves Ready) or a receive error occurs.
func (r *Resolver) readLoop(tc *transportConn) {
	defer r.wg.Done()

	for {
		tc.mu.Lock()
		conn := tc.conn
		state := tc.state
		tc.mu.Unlock()
		if state != stateReady || conn == nil {
			return
		}

		recvCtx, cancel := context.WithTimeout(r.ctx, r.pollInterval())
		raw, err := conn.Receive(recvCtx)
		cancel()
		if err != nil {
			select {
			case <-r.ctx.Done():
				return
			default:
			}
			if isTimeout(err) {
				continue
			}
			r.failTransport(tc, &errors.ResolverError{Kind: errors.Other, Op: "receive", Err: err})
			return
		}

		resp, err := message.Decode(raw)
		if err != nil {
			r.onUnhandled(&errors.ResolverError{Kind: errors.ResponseBad, Op: "decode", Err: err})
			continue
		}

		tc.mu.Lock()
		t, ok := tc.inbound[resp.Header.ID]
		if ok {
			delete(tc.inbound, resp.Header.ID)
		}
		tc.mu.Unlock()

		if !ok {
			r.onUnhandled(&errors.ResolverError{Kind: errors.ResponseIDUnexpected, Op: "receive"})
			continue
		}

		if resp.Header.RCode != message.RCodeNoError {
			t.resultCh <- taskResult{err: &errors.ResolverError{Kind: errors.ResponseBad, Op: "receive"}}
		} else {
			t.resultCh <- taskResult{msg: resp}
		}
		r.maybeScheduleClose(tc)
	}
}

// failTransport rejects every outbound and in-flight task on tc with kind
// Other and tears the transport down to Idle, per spec.md §4.2's error
// propagation rule.
func (r *Resolver) failTransport(tc *transportConn, rerr *errors.ResolverError) {
	tc.mu.Lock()
	conn := tc.conn
	pending := tc.outbound
	tc.outbound = nil
	inflight := tc.inbound
	tc.inbound = make(map[uint16]*task)
	tc.conn = nil
	tc.state = stateIdle
	r.stopCloseTimerLocked(tc)
	tc.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	for _, t := range pending {
		t.resultCh <- taskResult{err: rerr}
	}
	for _, t := range inflight {
		t.resultCh <- taskResult{err: rerr}
	}
	r.onUnhandled(rerr)
}

// maybeScheduleClose starts the deferred-close timer when both queues are
// empty, per spec.md §4.2's lifecycle rule.
func (r *Resolver) maybeScheduleClose(tc *transportConn) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if len(tc.outbound) != 0 || len(tc.inbound) != 0 {
		return
	}
	r.stopCloseTimerLocked(tc)
	tc.closeTimer = time.AfterFunc(r.keepOpenFor, func() { r.closeIfIdle(tc) })
}

func (r *Resolver) stopCloseTimerLocked(tc *transportConn) {
	if tc.closeTimer != nil {
		tc.closeTimer.Stop()
		tc.closeTimer = nil
	}
}

func (r *Resolver) closeIfIdle(tc *transportConn) {
	tc.mu.Lock()
	if len(tc.outbound) != 0 || len(tc.inbound) != 0 || tc.state != stateReady {
		tc.mu.Unlock()
		return
	}
	conn := tc.conn
	tc.conn = nil
	tc.state = stateIdle
	tc.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// scanLoop implements the process-wide retry/timeout scan from spec.md
// §4.2, ticking every timeoutInMs/20.
func (r *Resolver) scanLoop() {
	defer r.wg.Done()

	interval := r.timeout / 20
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.scanOnce(r.udp)
			r.scanOnce(r.tcp)
		}
	}
}

func (r *Resolver) scanOnce(tc *transportConn) {
	now := time.Now()

	tc.mu.Lock()
	var expired, retry []*task
	for id, t := range tc.inbound {
		if t.timestampSent.IsZero() || now.Sub(t.timestampSent) < r.timeout {
			continue
		}
		if t.retriesLeft > 0 {
			t.retriesLeft--
			retry = append(retry, t)
			continue
		}
		delete(tc.inbound, id)
		expired = append(expired, t)
	}
	silentTooLong := tc.useTCP && tc.state == stateReady && len(tc.inbound) > 0 && allSilent(tc.inbound, now, r.timeout)
	tc.mu.Unlock()

	for _, t := range retry {
		r.writeTask(tc, t)
	}
	for _, t := range expired {
		t.resultCh <- taskResult{err: &errors.ResolverError{Kind: errors.RequestUnanswered, Op: "scan"}}
	}
	r.maybeScheduleClose(tc)

	if silentTooLong {
		r.failTransport(tc, &errors.ResolverError{Kind: errors.RequestUnanswered, Op: "tcp idle timeout"})
	}
}

// pollInterval bounds how long readLoop's Receive call blocks so it can
// periodically notice r.ctx being canceled.
func (r *Resolver) pollInterval() time.Duration {
	if r.timeout > 0 {
		return r.timeout
	}
	return 2 * time.Second
}

// isTimeout reports whether err is a deadline expiry rather than a genuine
// socket failure.
func isTimeout(err error) bool {
	if goerrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if goerrors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func allSilent(inbound map[uint16]*task, now time.Time, timeout time.Duration) bool {
	for _, t := range inbound {
		if t.timestampSent.IsZero() || now.Sub(t.timestampSent) < timeout {
			return false
		}
	}
	return true
}

// Close stops the background scan and closes any open sockets. In-flight
// tasks are failed with RequestUnanswered.
func (r *Resolver) Close() error {
	r.cancel()
	r.wg.Wait()

	for _, tc := range []*transportConn{r.udp, r.tcp} {
		tc.mu.Lock()
		conn := tc.conn
		tc.conn = nil
		tc.state = stateIdle
		inflight := tc.inbound
		tc.inbound = make(map[uint16]*task)
		r.stopCloseTimerLocked(tc)
		tc.mu.Unlock()

		if conn != nil {
			_ = conn.Close()
		}
		for _, t := range inflight {
			select {
			case t.resultCh <- taskResult{err: &errors.ResolverError{Kind: errors.RequestUnanswered, Op: "close"}}:
			default:
			}
		}
	}
	return nil
}
