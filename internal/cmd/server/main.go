package main

import (
	"fmt"
	"log/slog"
	"os"

	"linechat/internal/chat"
	"linechat/internal/config"
	"linechat/internal/store"
)

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
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
