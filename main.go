// mentor TUI - a terminal client for the mentor learning platform.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/mentor-tui/internal/auth"
	"github.com/jeranaias/mentor-tui/internal/backend"
	"github.com/jeranaias/mentor-tui/internal/config"
	"github.com/jeranaias/mentor-tui/internal/controller"
	"github.com/jeranaias/mentor-tui/internal/server"
	"github.com/jeranaias/mentor-tui/internal/session"
	"github.com/jeranaias/mentor-tui/internal/storage"
	"github.com/jeranaias/mentor-tui/internal/ui/chat"
	"github.com/jeranaias/mentor-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "tui"
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var runErr error
	switch cmd {
	case "tui":
		runErr = runTUI(cfg)
	case "serve":
		runErr = runServe(cfg)
	case "login":
		runErr = runLogin(cfg)
	case "export":
		runErr = runExport(cfg, flag.Arg(1))
	case "version":
		fmt.Printf("mentor-tui %s (%s, built %s)\n", Version, GitCommit, BuildDate)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\nCommands: tui, serve, login, export, version\n", cmd)
		os.Exit(2)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return config.Load(path)
}

// setupLogging sends the standard logger to the log file so the TUI stays
// clean. Returns a close func.
func setupLogging(cfg *config.Config) (func(), error) {
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	return func() { f.Close() }, nil
}

// newSessionManager builds the signed-session manager from config.
func newSessionManager(cfg *config.Config) (*session.Manager, error) {
	secret, err := cfg.RequireSessionSecret()
	if err != nil {
		return nil, err
	}
	codec, err := session.NewCodec(secret, cfg.SessionMaxAge())
	if err != nil {
		return nil, err
	}
	mgr := session.NewManager(codec, cfg.Storage.Dir)
	if err := mgr.Restore(); err != nil {
		return nil, err
	}
	return mgr, nil
}

// =============================================================================
// TUI MODE
// =============================================================================

func runTUI(cfg *config.Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the TUI requires an interactive terminal; try 'mentor-tui serve'")
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	styles.ApplyTheme(cfg.Display.Theme)

	mgr, err := newSessionManager(cfg)
	if err != nil {
		return err
	}

	// With a TOTP secret configured, the on-disk session alone is not enough
	// to resume signed in; ask for a code before the TUI takes the screen.
	guard := auth.NewTOTPGuard(cfg.Auth.TOTPSecret)
	if err := auth.GuardedRestore(mgr, guard, auth.PromptTOTPCode); err != nil {
		log.Printf("SESSION_RESUME_REJECTED: %v", err)
		fmt.Fprintln(os.Stderr, "One-time code rejected; starting signed out.")
	}

	store, err := storage.NewConversationStore(cfg.ConversationsDir())
	if err != nil {
		return err
	}
	progress, err := storage.OpenProgressStore(cfg.ProgressDBPath())
	if err != nil {
		return err
	}
	defer progress.Close()

	client := backend.New(cfg.Backend.BaseURL).WithTimeout(cfg.BackendTimeout())
	if token, err := mgr.AccessToken(); err == nil && token != "" {
		client = client.WithToken(token)
	}

	m := chat.New(chat.Deps{
		Controller: controller.New(client),
		Store:      store,
		Progress:   progress,
		Sessions:   mgr,
		Client:     client,
		Config:     cfg,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Display settings follow config file edits while the TUI runs; the
	// watcher pushes the new options into the running model.
	watcher, werr := config.NewWatcher(configFilePath(cfg), func(d config.Display) {
		log.Printf("DISPLAY_UPDATED: wrap=%d sidebar=%d", d.WrapWidth, d.SidebarWidth)
		p.Send(chat.DisplayUpdatedMsg{Display: d})
	})
	if werr == nil {
		defer watcher.Close()
	}

	_, err = p.Run()
	return err
}

func configFilePath(cfg *config.Config) string {
	if p, err := config.DefaultPath(); err == nil {
		return p
	}
	return cfg.Storage.Dir
}

// =============================================================================
// GATEWAY MODE
// =============================================================================

func runServe(cfg *config.Config) error {
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	// Mirror gateway logs to stderr as well; serve mode has no TUI to protect.
	log.SetOutput(io.MultiWriter(os.Stderr, log.Writer()))

	secret, err := cfg.RequireSessionSecret()
	if err != nil {
		return err
	}
	codec, err := session.NewCodec(secret, cfg.SessionMaxAge())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, codec).Start(ctx)
}

// =============================================================================
// LOGIN MODE
// =============================================================================

func runLogin(cfg *config.Config) error {
	mgr, err := newSessionManager(cfg)
	if err != nil {
		return err
	}

	secret, err := cfg.RequireSessionSecret()
	if err != nil {
		return err
	}
	codec, err := session.NewCodec(secret, cfg.SessionMaxAge())
	if err != nil {
		return err
	}

	client := backend.New(cfg.Backend.BaseURL).WithTimeout(cfg.BackendTimeout())
	service := auth.NewService(client, codec, mgr)
	guard := auth.NewTOTPGuard(cfg.Auth.TOTPSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return auth.PromptLogin(ctx, service, guard)
}

// =============================================================================
// EXPORT MODE
// =============================================================================

func runExport(cfg *config.Config, id string) error {
	store, err := storage.NewConversationStore(cfg.ConversationsDir())
	if err != nil {
		return err
	}

	if id == "" {
		items, err := store.List()
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No saved conversations.")
			return nil
		}
		for _, item := range items {
			fmt.Printf("%s  %s\n", item.ID, item.Title)
		}
		return nil
	}

	doc, err := store.ExportMarkdown(id)
	if err != nil {
		return err
	}
	fmt.Print(doc)
	return nil
}
