package chat

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"linechat/internal/protocol"
)

// Client is the chat client: a line writer and reader over one TCP
// connection.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

// NewClient connects to the chat server.
func NewClient(serverAddr string) (*Client, error) {
	conn, err := net.Dial("tcp", serverAddr)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}, nil
}

// Login sends the handshake line and reports whether the server accepted
// the credentials.
func (c *Client) Login(login, password string) (bool, error) {
	if _, err := fmt.Fprintf(c.conn, "%s:%s\n", login, password); err != nil {
		return false, err
	}

	resp, err := c.reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(resp) == protocol.RespOK, nil
}

// SendMessage writes one line to the server.
func (c *Client) SendMessage(text string) error {
	_, err := fmt.Fprintln(c.conn, text)
	return err
}

// ReceiveMessages continuously prints incoming lines until the server goes
// away.
func (c *Client) ReceiveMessages() {
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			fmt.Println("Disconnected from server")
			os.Exit(0)
		}
		fmt.Print(line)
	}
}

// Close closes the connection to the server.
func (c *Client) Close() error {
	return c.conn.Close()
}
