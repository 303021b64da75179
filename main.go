package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sadopc/shiftcal/internal/config"
	"github.com/sadopc/shiftcal/internal/logger"
	"github.com/sadopc/shiftcal/internal/shift"
	"github.com/sadopc/shiftcal/internal/store"
	"github.com/sadopc/shiftcal/internal/tui"
)

func main() {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	s, err := store.New(cfg.DBPath)
	if err != nil {
		log.Error("open database", zap.String("path", cfg.DBPath), zap.Error(err))
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	cal := shift.NewCalendar(s, log)
	res, err := cal.Init()
	if err != nil {
		log.Error("initialize calendar", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	log.Info("calendar ready",
		zap.String("db", cfg.DBPath),
		zap.Bool("seeded", res.Seeded),
		zap.Int("migrated", res.Migrated),
		zap.Int("dropped", res.Dropped),
	)

	app := tui.NewApp(cal, s, tui.Options{
		ExportDir: cfg.ExportDir,
		ProductID: cfg.ProductID,
		Log:       log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		log.Error("program exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
