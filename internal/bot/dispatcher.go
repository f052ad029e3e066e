package bot

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/fscarponi/characterai/internal/metrics"
)

var (
	// ErrDispatcherClosed is returned when submitting to a closed dispatcher.
	ErrDispatcherClosed = errors.New("dispatcher closed")
	// ErrBacklogFull is returned when a conversation has too many pending events.
	ErrBacklogFull = errors.New("conversation backlog full")
)

// DefaultBacklog is the per-conversation queue limit used when none is configured.
const DefaultBacklog = 32

// DeliverFunc receives the replies for one event.
type DeliverFunc func(ctx context.Context, ev Event, replies []string)

type job struct {
	ev      Event
	deliver DeliverFunc
}

// lane is the FIFO of one conversation. At most one goroutine drains it.
type lane struct {
	queue []job
}

// Dispatcher runs events concurrently across conversations and strictly in
// arrival order within one conversation.
type Dispatcher struct {
	handler    Handler
	maxBacklog int
	recorder   metrics.Recorder
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	lanes  map[string]*lane
	closed bool
	wg     sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithBacklog sets the per-conversation pending event limit.
func WithBacklog(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxBacklog = n
		}
	}
}

// WithDispatchRecorder sets the metrics recorder.
func WithDispatchRecorder(r metrics.Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithDispatchLogger sets the logger.
func WithDispatchLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a Dispatcher in front of handler.
func NewDispatcher(handler Handler, opts ...DispatcherOption) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		handler:    handler,
		maxBacklog: DefaultBacklog,
		recorder:   metrics.Nop{},
		logger:     slog.Default(),
		ctx:        ctx,
		cancel:     cancel,
		lanes:      make(map[string]*lane),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit queues ev. deliver is called from the conversation's worker once
// the event has been handled.
func (d *Dispatcher) Submit(ev Event, deliver DeliverFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	l, ok := d.lanes[ev.ConversationID]
	if ok && len(l.queue) >= d.maxBacklog {
		d.recorder.IncBacklogRejected()
		d.logger.Warn("Conversation backlog full, rejecting event",
			"conversation_id", ev.ConversationID,
			"backlog", len(l.queue))
		return ErrBacklogFull
	}
	if !ok {
		l = &lane{}
		d.lanes[ev.ConversationID] = l
		d.wg.Add(1)
		go d.drain(ev.ConversationID, l)
	}
	l.queue = append(l.queue, job{ev: ev, deliver: deliver})
	return nil
}

// Do submits ev and waits for its replies.
func (d *Dispatcher) Do(ctx context.Context, ev Event) ([]string, error) {
	result := make(chan []string, 1)
	err := d.Submit(ev, func(_ context.Context, _ Event, replies []string) {
		result <- replies
	})
	if err != nil {
		return nil, err
	}
	select {
	case replies := <-result:
		return replies, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *Dispatcher) drain(id string, l *lane) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		if len(l.queue) == 0 {
			delete(d.lanes, id)
			d.mu.Unlock()
			return
		}
		next := l.queue[0]
		l.queue[0] = job{}
		l.queue = l.queue[1:]
		d.mu.Unlock()

		d.run(next)
	}
}

func (d *Dispatcher) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Panic in conversation worker",
				"conversation_id", j.ev.ConversationID,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	replies := d.handler.Handle(d.ctx, j.ev)
	if j.deliver != nil {
		j.deliver(d.ctx, j.ev, replies)
	}
}

// Pending returns the number of queued events for a conversation.
func (d *Dispatcher) Pending(conversationID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l, ok := d.lanes[conversationID]; ok {
		return len(l.queue)
	}
	return 0
}

// Close stops accepting events and waits for queued ones to finish. When ctx
// expires first, in-flight handlers are cancelled and ctx.Err is returned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

// RejectionReply is the text sent to a user whose event could not be queued.
func RejectionReply(err error) string {
	if errors.Is(err, ErrBacklogFull) {
		return msgBusy
	}
	return msgInternal
}
