package chat

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linechat/internal/store"
)

type fakeStore struct {
	mu       sync.Mutex
	logins   []string
	messages []store.Message
	failAdd  bool
}

func (f *fakeStore) VerifyOrRegister(login, password string) (bool, error) {
	return true, nil
}

func (f *fakeStore) AddMessage(sender, recipient, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd {
		return errors.New("store rejected the write")
	}
	f.messages = append(f.messages, store.Message{
		ID:        int64(len(f.messages) + 1),
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
	})
	return nil
}

func (f *fakeStore) Messages() ([]store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.Message(nil), f.messages...), nil
}

func (f *fakeStore) Logins() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.logins...), nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) stored(t *testing.T) []store.Message {
	t.Helper()
	msgs, err := f.Messages()
	require.NoError(t, err)
	return msgs
}

// testPeer is one fake connected client: a registered session plus the
// client end of its pipe.
type testPeer struct {
	sess   *Session
	conn   net.Conn
	reader *bufio.Reader
}

func newTestPeer(t *testing.T, reg *Registry, login string) *testPeer {
	t.Helper()
	server, client := net.Pipe()
	sess := newSession(server, login)
	reg.Add(sess)
	t.Cleanup(func() {
		sess.Close()
		client.Close()
	})
	return &testPeer{sess: sess, conn: client, reader: bufio.NewReader(client)}
}

func (p *testPeer) readLine(t *testing.T) string {
	t.Helper()
	p.conn.SetReadDeadline(time.Now().Add(time.Second))
	line, err := p.reader.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(line, "\n")
}

func (p *testPeer) assertNoLine(t *testing.T) {
	t.Helper()
	p.conn.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	_, err := p.reader.ReadString('\n')
	require.Error(t, err)
}

func newTestDispatcher(st store.Store, reg *Registry, maxLen int) *Dispatcher {
	return NewDispatcher(st, reg, maxLen, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBroadcastFansOutToEveryoneButSender(t *testing.T) {
	st := &fakeStore{}
	reg := NewRegistry()
	d := newTestDispatcher(st, reg, 200)

	alice := newTestPeer(t, reg, "alice")
	bob := newTestPeer(t, reg, "bob")
	carol := newTestPeer(t, reg, "carol")

	d.Dispatch(alice.sess, "hello everyone")

	assert.Equal(t, "[alice] hello everyone", bob.readLine(t))
	assert.Equal(t, "[alice] hello everyone", carol.readLine(t))
	alice.assertNoLine(t)

	msgs := st.stored(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, store.Message{ID: 1, Sender: "alice", Recipient: "", Text: "hello everyone"}, msgs[0])
}

func TestBroadcastTruncatesToConfiguredLength(t *testing.T) {
	st := &fakeStore{}
	reg := NewRegistry()
	d := newTestDispatcher(st, reg, 5)

	alice := newTestPeer(t, reg, "alice")
	bob := newTestPeer(t, reg, "bob")

	d.Dispatch(alice.sess, "hello world")

	assert.Equal(t, "[alice] hello", bob.readLine(t))

	msgs := st.stored(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Text)
}

func TestBroadcastDeliveredEvenWhenPersistenceFails(t *testing.T) {
	st := &fakeStore{failAdd: true}
	reg := NewRegistry()
	d := newTestDispatcher(st, reg, 200)

	alice := newTestPeer(t, reg, "alice")
	bob := newTestPeer(t, reg, "bob")

	d.Dispatch(alice.sess, "still delivered")

	assert.Equal(t, "[alice] still delivered", bob.readLine(t))
	assert.Empty(t, st.stored(t))
}

func TestWhisperDeliversToTargetAndSender(t *testing.T) {
	st := &fakeStore{}
	reg := NewRegistry()
	d := newTestDispatcher(st, reg, 200)

	alice := newTestPeer(t, reg, "alice")
	bob := newTestPeer(t, reg, "bob")
	carol := newTestPeer(t, reg, "carol")

	d.Dispatch(alice.sess, "/w bob hi there")

	assert.Equal(t, "[alice -> bob] hi there", bob.readLine(t))
	assert.Equal(t, "[alice -> bob] hi there", alice.readLine(t))
	carol.assertNoLine(t)

	msgs := st.stored(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, "bob", msgs[0].Recipient)
	assert.Equal(t, "hi there", msgs[0].Text)
}

func TestWhisperTruncatesBody(t *testing.T) {
	st := &fakeStore{}
	reg := NewRegistry()
	d := newTestDispatcher(st, reg, 5)

	alice := newTestPeer(t, reg, "alice")
	bob := newTestPeer(t, reg, "bob")

	d.Dispatch(alice.sess, "/w bob hello world")

	assert.Equal(t, "[alice -> bob] hello", bob.readLine(t))

	msgs := st.stored(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Text)
}

func TestWhisperToOfflineLoginDroppedWithNotice(t *testing.T) {
	st := &fakeStore{}
	reg := NewRegistry()
	d := newTestDispatcher(st, reg, 200)

	alice := newTestPeer(t, reg, "alice")
	bob := newTestPeer(t, reg, "bob")

	d.Dispatch(alice.sess, "/w dave hello")

	assert.Equal(t, "[Сервер] Пользователь 'dave' не в сети", alice.readLine(t))
	bob.assertNoLine(t)
	assert.Empty(t, st.stored(t))
}

func TestWhisperMissingBodyGetsUsageHint(t *testing.T) {
	st := &fakeStore{}
	reg := NewRegistry()
	d := newTestDispatcher(st, reg, 200)

	alice := newTestPeer(t, reg, "alice")

	d.Dispatch(alice.sess, "/w bob")
	assert.Equal(t, "[Сервер] Использование: /w <login> <текст>", alice.readLine(t))

	d.Dispatch(alice.sess, "/w bob   ")
	assert.Equal(t, "[Сервер] Использование: /w <login> <текст>", alice.readLine(t))

	assert.Empty(t, st.stored(t))
}

func TestUsersListFramedAndSentToRequesterOnly(t *testing.T) {
	st := &fakeStore{logins: []string{"alice", "bob", "carol"}}
	reg := NewRegistry()
	d := newTestDispatcher(st, reg, 200)

	alice := newTestPeer(t, reg, "alice")
	bob := newTestPeer(t, reg, "bob")

	d.Dispatch(alice.sess, "/users")

	assert.Equal(t, "[USERS]", alice.readLine(t))
	assert.Equal(t, "alice", alice.readLine(t))
	assert.Equal(t, "bob", alice.readLine(t))
	assert.Equal(t, "carol", alice.readLine(t))
	assert.Equal(t, "[END]", alice.readLine(t))
	bob.assertNoLine(t)
}

func TestHelpSentToSenderOnly(t *testing.T) {
	st := &fakeStore{}
	reg := NewRegistry()
	d := newTestDispatcher(st, reg, 200)

	alice := newTestPeer(t, reg, "alice")
	bob := newTestPeer(t, reg, "bob")

	d.Dispatch(alice.sess, "/help")

	assert.Equal(t, "[Сервер] Команды:", alice.readLine(t))
	assert.Contains(t, alice.readLine(t), "/users")
	assert.Contains(t, alice.readLine(t), "/w <login>")
	assert.Contains(t, alice.readLine(t), "exit")
	bob.assertNoLine(t)
	assert.Empty(t, st.stored(t))
}
