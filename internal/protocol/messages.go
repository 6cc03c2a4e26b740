// Package protocol defines the line-oriented wire format shared by the
// server and the client.
package protocol

import (
	"fmt"
	"strings"
)

// Protocol constants for client-server communication
const (
	// Handshake responses
	RespOK   = "OK"
	RespFail = "FAIL"

	// Users list framing
	UsersHeader = "[USERS]"
	UsersFooter = "[END]"

	// Display name used for system notices
	serverName = "Сервер"
)

// ParseHandshake splits the first client line into login and password on
// the first colon. A line without a colon is not a valid handshake.
func ParseHandshake(line string) (login, password string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}
	return line[:i], line[i+1:], true
}

// FormatBroadcast formats a chat line addressed to everyone.
func FormatBroadcast(sender, text string) string {
	return fmt.Sprintf("[%s] %s", sender, text)
}

// FormatDirected formats a private message line.
func FormatDirected(sender, recipient, text string) string {
	return fmt.Sprintf("[%s -> %s] %s", sender, recipient, text)
}

// FormatHistory formats a replayed message; broadcasts show ALL in the
// recipient position.
func FormatHistory(sender, recipient, text string) string {
	if recipient == "" {
		recipient = "ALL"
	}
	return FormatDirected(sender, recipient, text)
}

// FormatNotice formats a system notice.
func FormatNotice(text string) string {
	return fmt.Sprintf("[%s] %s", serverName, text)
}

// Truncate cuts text to at most limit characters. The wire format is
// UTF-8, so the cut counts runes rather than bytes.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
