// Command board is the terminal client: a kanban board of tracked
// applications and a finder over imported listings.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/careercardinal/jobtracker/internal/board"
	"github.com/careercardinal/jobtracker/internal/boardui"
	"github.com/careercardinal/jobtracker/internal/client"
	"github.com/careercardinal/jobtracker/internal/config"
	"github.com/careercardinal/jobtracker/internal/finder"
	"github.com/careercardinal/jobtracker/internal/tracker"
	"github.com/careercardinal/jobtracker/pkg/log"
)

const columnsTimeout = 5 * time.Second

type columnSource interface {
	Columns(ctx context.Context) (tracker.Columns, error)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	apiBase := flag.String("api", client.DefaultBaseURL, "API server base URL")
	localPath := flag.String("local", "", "keep the board in this JSON file instead of on the server")
	logFile := flag.String("log-file", filepath.Join(os.TempDir(), "jobtracker-board.log"), "log file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// the terminal belongs to the UI, so logs go to a file
	fileLogger, err := log.NewFileLogger(*logFile, log.ParseLevel(cfg.System.LogLevel))
	if err != nil {
		return err
	}
	defer fileLogger.Close()
	log.SetLogger(fileLogger.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := client.New(*apiBase)

	var (
		backend board.Tracker = api
		columns tracker.Columns
	)
	if *localPath != "" {
		columns = cfg.Columns()
		backend = board.NewLocalStore(*localPath, columns)
		log.Info("Using local board snapshot %s", *localPath)
	} else {
		columns = boardColumns(ctx, api, cfg.Columns())
	}

	ctrl := board.NewController(columns, backend)
	updates, onChange := boardui.FinderUpdates()
	f := finder.New(api, backend, onChange)
	defer f.Close()

	p := tea.NewProgram(boardui.New(ctx, ctrl, f, updates), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("board ui: %w", err)
	}
	return nil
}

// boardColumns asks the server for its lanes so records are grouped the
// way the server validates them. fallback is used when it cannot answer.
func boardColumns(ctx context.Context, src columnSource, fallback tracker.Columns) tracker.Columns {
	ctx, cancel := context.WithTimeout(ctx, columnsTimeout)
	defer cancel()

	cols, err := src.Columns(ctx)
	if err != nil {
		log.Warn("Failed to fetch board columns, using local configuration: %v", err)
		return fallback
	}
	return cols
}
