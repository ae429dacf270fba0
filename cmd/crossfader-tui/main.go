package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/crossfader-relay/crossfader/internal/config"
	"github.com/crossfader-relay/crossfader/internal/logging"
	"github.com/crossfader-relay/crossfader/internal/tui/app"
	"github.com/crossfader-relay/crossfader/internal/tui/client"
)

func main() {
	wsURL := flag.String("url", "ws://localhost:8765/ws", "WebSocket URL of the crossfader server")
	logFile := flag.String("log", "", "Write logs to this file (rotated)")
	flag.Parse()

	// The alt screen owns the terminal; logs go to a file or nowhere.
	if *logFile != "" {
		closer := logging.Setup(config.LogConfig{File: *logFile, MaxSizeMB: 10, MaxBackups: 3})
		defer closer.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	ws := client.NewWSClient(*wsURL)
	p := tea.NewProgram(app.New(ws, *wsURL), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
