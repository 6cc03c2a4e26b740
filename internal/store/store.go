// Package store persists users and messages.
package store

// Message is one persisted chat message. An empty recipient marks a
// broadcast visible to everyone.
type Message struct {
	ID        int64
	Sender    string
	Recipient string
	Text      string
}

// Store is the persistence contract the chat core consumes.
type Store interface {
	// VerifyOrRegister checks login and password against the stored
	// credential. An unseen login is registered on the spot and accepted.
	VerifyOrRegister(login, password string) (bool, error)

	// AddMessage appends a message; an empty recipient means broadcast.
	AddMessage(sender, recipient, text string) error

	// Messages returns every stored message in insertion order.
	Messages() ([]Message, error)

	// Logins returns every registered login in ascending order.
	Logins() ([]string, error)

	Close() error
}
