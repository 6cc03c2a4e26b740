package chat

import (
	"log/slog"
	"strings"

	"linechat/internal/protocol"
	"linechat/internal/store"
)

const helpText = "Команды:\n" +
	"  /users              — список пользователей\n" +
	"  /w <login> <текст>  — личное сообщение\n" +
	"  exit                — выход (на клиенте)"

const whisperUsage = "Использование: /w <login> <текст>"

// Dispatcher interprets decoded, non-empty lines from authenticated
// sessions.
type Dispatcher struct {
	store    store.Store
	registry *Registry
	maxLen   int
	log      *slog.Logger
}

// NewDispatcher wires the dispatcher to its collaborators. maxLen caps the
// text of every persisted and delivered message.
func NewDispatcher(st store.Store, reg *Registry, maxLen int, log *slog.Logger) *Dispatcher {
	return &Dispatcher{store: st, registry: reg, maxLen: maxLen, log: log}
}

// Dispatch handles one line from sess: a control command or a chat message.
func (d *Dispatcher) Dispatch(sess *Session, line string) {
	switch {
	case line == "/help":
		sess.SendSync(protocol.FormatNotice(helpText))
	case line == "/users":
		d.sendUsers(sess)
	case strings.HasPrefix(line, "/w "):
		d.whisper(sess, line)
	default:
		d.broadcast(sess, line)
	}
}

// sendUsers sends the registered-login list framed by the start and end
// markers, to the requesting session only.
func (d *Dispatcher) sendUsers(sess *Session) {
	logins, err := d.store.Logins()
	if err != nil {
		d.log.Warn("failed to list logins", "error", err)
	}

	sess.SendSync(protocol.UsersHeader)
	for _, login := range logins {
		sess.SendSync(login)
	}
	sess.SendSync(protocol.UsersFooter)
}

// whisper handles a directed message: /w <login> <text>.
func (d *Dispatcher) whisper(sess *Session, line string) {
	rest := strings.TrimSpace(line[len("/w "):])
	target, body, found := strings.Cut(rest, " ")
	if !found {
		sess.SendSync(protocol.FormatNotice(whisperUsage))
		return
	}
	target = strings.TrimSpace(target)
	body = strings.TrimSpace(body)
	if target == "" || body == "" {
		sess.SendSync(protocol.FormatNotice(whisperUsage))
		return
	}

	peer, ok := d.registry.Lookup(target)
	if !ok {
		// Offline directed messages are dropped, not queued.
		sess.SendSync(protocol.FormatNotice("Пользователь '" + target + "' не в сети"))
		return
	}

	body = protocol.Truncate(body, d.maxLen)
	out := protocol.FormatDirected(sess.Login, target, body)

	// Deliver to the recipient and echo to the sender as confirmation.
	peer.Send(out)
	sess.SendSync(out)

	if err := d.store.AddMessage(sess.Login, target, body); err != nil {
		d.log.Warn("failed to persist message", "error", err, "session", sess.ID)
	}
}

// broadcast persists a chat line and fans it out to every other session.
func (d *Dispatcher) broadcast(sess *Session, text string) {
	text = protocol.Truncate(text, d.maxLen)
	out := protocol.FormatBroadcast(sess.Login, text)
	d.log.Info(out)

	if err := d.store.AddMessage(sess.Login, "", text); err != nil {
		d.log.Warn("failed to persist message", "error", err, "session", sess.ID)
	}
	d.fanOut(out, sess)
}

// fanOut sends a line to every live session except the origin.
func (d *Dispatcher) fanOut(line string, except *Session) {
	for _, s := range d.registry.Sessions() {
		if s != except {
			s.Send(line)
		}
	}
}
