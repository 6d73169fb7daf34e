// jobdeck TUI - a terminal chat client for the JobDeck application assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jhalloran/jobdeck-tui/internal/api"
	"github.com/jhalloran/jobdeck-tui/internal/config"
	"github.com/jhalloran/jobdeck-tui/internal/logging"
	"github.com/jhalloran/jobdeck-tui/internal/ui/chat"
	"github.com/jhalloran/jobdeck-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default ~/.jobdeck/config.toml)")
	serverURL := flag.String("server", "", "backend base URL (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("jobdeck %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.Server.BaseURL = *serverURL
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	logCloser, err := logging.Setup(cfg.LogPath(), cfg.Log.Level, cfg.Log.Enabled)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "jobdeck needs an interactive terminal")
		os.Exit(1)
	}

	client := api.NewClient(cfg.Server.BaseURL).WithTimeout(cfg.RequestTimeout())
	if cfg.Server.SessionCookie != "" {
		client = client.WithSessionCookie(cfg.Server.SessionCookieName, cfg.Server.SessionCookie)
	}

	theme := styles.NewTheme()
	m := chat.New(client, cfg, theme)

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Hot-reload config edits into the running UI. A broken watcher is not
	// fatal; the session just runs on the startup config.
	watcher, err := config.NewWatcher(path)
	if err != nil {
		slog.Warn("config watcher unavailable", "error", err)
	} else {
		defer watcher.Close()
		go func() {
			for reloaded := range watcher.Changes() {
				p.Send(chat.ConfigReloadedMsg{Config: reloaded})
			}
		}()
	}

	slog.Info("starting jobdeck", "version", Version, "server", cfg.Server.BaseURL)
	final, err := p.Run()
	if cm, ok := final.(chat.Model); ok {
		cm.Teardown()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running jobdeck: %v\n", err)
		os.Exit(1)
	}
}
