package chat

import (
	"fmt"
	"log/slog"
	"net"

	"linechat/internal/config"
	"linechat/internal/protocol"
	"linechat/internal/store"
)

// Server accepts connections, authenticates them against the store and
// drives decode and dispatch for each. Every connection runs in its own
// goroutine; the registry serializes all shared state.
type Server struct {
	store      store.Store
	registry   *Registry
	dispatcher *Dispatcher
	listener   net.Listener
	log        *slog.Logger
}

// NewServer binds the listening socket and wires the chat core together.
func NewServer(cfg config.Config, st store.Store, log *slog.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", cfg.Port, err)
	}

	registry := NewRegistry()
	return &Server{
		store:      st,
		registry:   registry,
		dispatcher: NewDispatcher(st, registry, cfg.MaxMessageLen, log),
		listener:   listener,
		log:        log,
	}, nil
}

// Addr returns the bound listening address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Run accepts connections until the listener is closed.
func (s *Server) Run() {
	s.log.Info("server started", "addr", s.listener.Addr().String())

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

// handleConn authenticates one connection, then pumps its lines into the
// dispatcher until the peer goes away.
func (s *Server) handleConn(conn net.Conn) {
	sess, ok := s.handshake(conn)
	if !ok {
		return
	}
	defer s.disconnect(sess)

	dec := &protocol.Decoder{}
	buf := make([]byte, 1024)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			for _, line := range dec.Feed(buf[:n]) {
				s.dispatcher.Dispatch(sess, line)
			}
		}
		if err != nil {
			return
		}
	}
}

// handshake reads the first line, authenticates it against the store and,
// on success, registers the session, replays history, sends the users list
// and announces the join. On failure the connection is rejected and closed.
func (s *Server) handshake(conn net.Conn) (*Session, bool) {
	line, err := readLine(conn)
	if err != nil {
		// Disconnected before the terminator: abort, no response.
		conn.Close()
		return nil, false
	}

	login, password, ok := protocol.ParseHandshake(line)
	if ok {
		ok, err = s.store.VerifyOrRegister(login, password)
		if err != nil {
			s.log.Warn("auth lookup failed", "error", err)
			ok = false
		}
	}
	if !ok {
		conn.Write([]byte(protocol.RespFail + "\n"))
		conn.Close()
		return nil, false
	}

	sess := newSession(conn, login)
	if evicted := s.registry.Add(sess); evicted != nil {
		s.log.Info("evicting older session", "login", login, "session", evicted.ID)
		evicted.Close()
	}

	sess.SendSync(protocol.RespOK)
	s.replayHistory(sess)
	s.dispatcher.sendUsers(sess)
	s.dispatcher.fanOut(protocol.FormatNotice(login+" подключился"), sess)

	s.log.Info("client connected", "login", login, "session", sess.ID)
	return sess, true
}

// replayHistory sends every stored message the joining login may see:
// broadcasts plus the directed messages it sent or received, oldest first.
func (s *Server) replayHistory(sess *Session) {
	msgs, err := s.store.Messages()
	if err != nil {
		s.log.Warn("failed to load history", "error", err)
		return
	}
	for _, m := range msgs {
		if m.Recipient != "" && m.Sender != sess.Login && m.Recipient != sess.Login {
			continue
		}
		sess.SendSync(protocol.FormatHistory(m.Sender, m.Recipient, m.Text))
	}
}

// disconnect tears a session down and tells everyone else. A session that
// lost its login route to a newer connection leaves silently: the login
// is still online.
func (s *Server) disconnect(sess *Session) {
	owned := s.registry.Remove(sess)
	sess.Close()
	if !owned {
		return
	}

	s.log.Info("client disconnected", "login", sess.Login, "session", sess.ID)
	s.dispatcher.fanOut(protocol.FormatNotice(sess.Login+" отключился"), sess)
}

// Close stops accepting and shuts down every live session. The store stays
// open; its owner closes it.
func (s *Server) Close() error {
	for _, sess := range s.registry.Sessions() {
		sess.Close()
	}
	return s.listener.Close()
}

// readLine reads the handshake line one byte at a time, stripping '\r'.
// A disconnect before the terminator returns an error.
func readLine(conn net.Conn) (string, error) {
	var b [1]byte
	var line []byte
	for {
		n, err := conn.Read(b[:])
		if err != nil {
			return "", err
		}
		if n == 0 {
			continue
		}
		switch b[0] {
		case '\n':
			return string(line), nil
		case '\r':
		default:
			line = append(line, b[0])
		}
	}
}
