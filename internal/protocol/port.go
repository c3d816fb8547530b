package protocol

import "sync"

// DefaultPortBuffer bounds how many undelivered messages a port holds
const DefaultPortBuffer = 64

// Port is the inbox of one isolated surface. Delivery is best-effort:
// Send never blocks and silently drops when the port is full or closed.
type Port struct {
	mu      sync.Mutex
	ch      chan Message
	closed  bool
	dropped int
}

// NewPort creates an open port
func NewPort(buffer int) *Port {
	if buffer <= 0 {
		buffer = DefaultPortBuffer
	}
	return &Port{ch: make(chan Message, buffer)}
}

// Send delivers m if the receiver is still around
func (p *Port) Send(m Message) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.dropped++
		return false
	}
	select {
	case p.ch <- m:
		return true
	default:
		p.dropped++
		return false
	}
}

// Messages is the receiving end; it is closed by Close
func (p *Port) Messages() <-chan Message {
	return p.ch
}

// Close tears the port down. Safe to call more than once.
func (p *Port) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.ch)
}

// Closed reports whether the port was torn down
func (p *Port) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Dropped counts messages that were not delivered
func (p *Port) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}
