package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"linechat/internal/chat"

	"golang.org/x/term"
)

// readPassword reads a password from stdin without echoing it
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))

	// Print a newline after reading the password
	fmt.Println()

	if err != nil {
		return "", err
	}
	return string(passwordBytes), nil
}

func main() {
	serverAddr := "localhost:5000"
	if len(os.Args) > 1 {
		serverAddr = os.Args[1]
	}

	fmt.Println("Connecting to chat server at", serverAddr)
	client, err := chat.NewClient(serverAddr)
	if err != nil {
		fmt.Println("Error connecting to server:", err)
		os.Exit(1)
	}
	defer client.Close()

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Login: ")
	login, _ := reader.ReadString('\n')
	login = strings.TrimSpace(login)

	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Println("Error reading password:", err)
		os.Exit(1)
	}

	ok, err := client.Login(login, password)
	if err != nil {
		fmt.Println("Login error:", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Println("Authentication failed")
		os.Exit(1)
	}

	fmt.Println("Login successful!")
	fmt.Println("Type messages and press Enter to send, 'exit' to quit.")

	// Start receiving messages in a goroutine
	go client.ReceiveMessages()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		message := strings.TrimSpace(scanner.Text())
		if message == "exit" {
			return
		}
		if message != "" {
			if err := client.SendMessage(message); err != nil {
				fmt.Println("Error sending message:", err)
			}
		}
	}
}
