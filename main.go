package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"linechat/internal/chat"
	"linechat/internal/config"
	"linechat/internal/store"

	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: linechat server [config] | linechat client [addr]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "server":
		runServer(os.Args[2:])
	case "client":
		runClient(os.Args[2:])
	default:
		fmt.Println("Invalid mode. Use 'server' or 'client'")
		os.Exit(1)
	}
}

func runServer(args []string) {
	configPath := "config.yaml"
	if len(args) > 0 {
		configPath = args[0]
	}
	cfg := config.Load(configPath)
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	st, err := store.OpenSQLite("chat.db")
	if err != nil {
		fmt.Println("Error opening database:", err)
		os.Exit(1)
	}
	defer st.Close()

	server, err := chat.NewServer(cfg, st, log)
	if err != nil {
		fmt.Println("Error starting server:", err)
		os.Exit(1)
	}
	server.Run()
}

func runClient(args []string) {
	serverAddr := "localhost:5000"
	if len(args) > 0 {
		serverAddr = args[0]
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

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password:", err)
		os.Exit(1)
	}

	ok, err := client.Login(login, string(passwordBytes))
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
