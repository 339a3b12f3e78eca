package enginetest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fenwick/ucirun"
)

// ErrClosed is returned by Send after the script channel is closed.
var ErrClosed = errors.New("enginetest: channel closed")

// rule maps a command prefix to the lines the fake engine replies with.
type rule struct {
	prefix string
	delay  time.Duration
	lines  []string
}

// batch is one unit of asynchronous line delivery.
type batch struct {
	delay time.Duration
	lines []string
}

// Script is a scripted in-memory [ucirun.Channel].
//
// Replies are registered with On/OnDelay and matched against sent
// commands by prefix, first registration wins. Delivery happens on a
// single goroutine in enqueue order, mimicking a real channel's
// one-line-at-a-time callback semantics. Lines arriving while no
// handler is attached are dropped, exactly like the subprocess channel.
type Script struct {
	mu      sync.Mutex
	handler ucirun.LineHandler
	rules   []rule
	sent    []string
	err     error

	queue     chan batch
	done      chan struct{}
	closeOnce sync.Once
}

var _ ucirun.Channel = (*Script)(nil)

// New creates an empty script channel and starts its delivery goroutine.
func New() *Script {
	s := &Script{
		queue: make(chan batch, 128),
		done:  make(chan struct{}),
	}
	go s.deliverLoop()
	return s
}

// On registers an immediate reply for commands starting with prefix.
// Rules persist across matches; earlier registrations win.
func (s *Script) On(prefix string, lines ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rule{prefix: prefix, lines: lines})
}

// OnDelay registers a reply delivered after the given delay. The delay
// applies once before the batch; lines within a batch are back-to-back.
func (s *Script) OnDelay(prefix string, delay time.Duration, lines ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rule{prefix: prefix, delay: delay, lines: lines})
}

// Inject queues unsolicited lines, as an engine chattering without being
// asked.
func (s *Script) Inject(lines ...string) {
	s.enqueue(batch{lines: lines})
}

// Sent returns a copy of every command sent so far, in order.
func (s *Script) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	copy(out, s.sent)
	return out
}

// Fail simulates a transport failure: Done closes and Err reports err.
func (s *Script) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.closeOnce.Do(func() { close(s.done) })
}

// Send records the command and queues the first matching scripted reply.
func (s *Script) Send(_ context.Context, command string) error {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return ErrClosed
	default:
	}
	s.sent = append(s.sent, command)
	var matched *rule
	for i := range s.rules {
		if strings.HasPrefix(command, s.rules[i].prefix) {
			matched = &s.rules[i]
			break
		}
	}
	s.mu.Unlock()

	if matched != nil {
		s.enqueue(batch{delay: matched.delay, lines: matched.lines})
	}
	return nil
}

// SetLineHandler attaches or detaches (nil) the line callback.
func (s *Script) SetLineHandler(h ucirun.LineHandler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// Done is closed on Close or Fail.
func (s *Script) Done() <-chan struct{} { return s.done }

// Err returns the failure injected with Fail, or nil.
func (s *Script) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close shuts the channel down. Safe to call multiple times.
func (s *Script) Close(context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func (s *Script) enqueue(b batch) {
	select {
	case s.queue <- b:
	case <-s.done:
	}
}

// deliverLoop is the single delivery goroutine: batches in enqueue
// order, one handler call per line.
func (s *Script) deliverLoop() {
	for {
		select {
		case <-s.done:
			return
		case b := <-s.queue:
			if b.delay > 0 {
				select {
				case <-time.After(b.delay):
				case <-s.done:
					return
				}
			}
			for _, line := range b.lines {
				s.mu.Lock()
				h := s.handler
				s.mu.Unlock()
				if h != nil {
					h(line)
				}
			}
		}
	}
}
