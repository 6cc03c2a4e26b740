package chat

import (
	"net"
	"sync"

	"github.com/google/uuid"
)

// outboundDepth bounds the per-session send queue. A peer that falls this
// far behind is disconnected rather than allowed to stall dispatch.
const outboundDepth = 64

// Session is one authenticated connection. The login is bound exactly once,
// at creation; a connection that fails the handshake never becomes a
// Session.
type Session struct {
	ID    string
	Login string

	conn net.Conn
	out  chan string
	done chan struct{}
	once sync.Once
}

func newSession(conn net.Conn, login string) *Session {
	s := &Session{
		ID:    uuid.NewString(),
		Login: login,
		conn:  conn,
		out:   make(chan string, outboundDepth),
		done:  make(chan struct{}),
	}
	go s.writePump()
	return s
}

// writePump drains the outbound queue onto the socket, one line per entry.
// A failed write closes the whole session, so senders parked in SendSync
// are released instead of waiting behind a dead socket.
func (s *Session) writePump() {
	for {
		select {
		case <-s.done:
			return
		case line := <-s.out:
			if _, err := s.conn.Write([]byte(line + "\n")); err != nil {
				s.Close()
				return
			}
		}
	}
}

// Send queues one line for delivery without blocking the caller. A full
// queue means the peer stopped reading, so the session is closed instead.
func (s *Session) Send(line string) {
	select {
	case s.out <- line:
	default:
		s.Close()
	}
}

// SendSync queues one line, waiting for space. Only the session's own
// connection goroutine may call it: blocking there backpressures the peer
// itself and nobody else.
func (s *Session) SendSync(line string) {
	select {
	case <-s.done:
	case s.out <- line:
	}
}

// Close shuts the session down. Safe to call from any goroutine, any
// number of times.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
