package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mshel/termsnake/internal/autopilot"
	"github.com/Mshel/termsnake/internal/game"
	"github.com/Mshel/termsnake/internal/spectate"
	"github.com/Mshel/termsnake/internal/ui"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

func main() {
	settings := game.SettingsFromEnv()
	flag.IntVar(&settings.BoardWidth, "width", settings.BoardWidth, "board width in cells, shrunk to fit the terminal")
	flag.IntVar(&settings.BoardHeight, "height", settings.BoardHeight, "board height in cells, shrunk to fit the terminal")
	flag.StringVar(&settings.Autopilot, "autopilot", settings.Autopilot, `let a Lua strategy play: "builtin" or a script path`)
	flag.StringVar(&settings.SpectateAddr, "spectate", settings.SpectateAddr, "serve a websocket feed of the game on this address")
	flag.StringVar(&settings.LogFile, "log-file", settings.LogFile, "write logs to this file")
	flag.StringVar(&settings.LogLevel, "log-level", settings.LogLevel, "debug, info, warn or error")
	flag.Parse()

	logger, closeLog, err := newLogger(settings)
	if err != nil {
		fmt.Printf("error %v\n", err)
		os.Exit(1)
	}

	code := run(settings, logger)
	closeLog()
	os.Exit(code)
}

func run(settings game.Settings, logger *log.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	terminal := ui.NewLocalTerminal(logger)
	options := []game.SessionOption{game.WithLogger(logger)}

	if settings.Autopilot != "" {
		pilot, err := autopilot.Load(settings.Autopilot, terminal, logger)
		if err != nil {
			fmt.Printf("error %v\n", err)
			return 1
		}
		defer pilot.Close()
		options = append(options, game.WithInput(pilot), game.WithObservers(pilot))
	}

	if settings.SpectateAddr != "" {
		hub := spectate.NewHub(logger)
		mux := http.NewServeMux()
		mux.Handle("/watch", hub)
		spectateServer := &http.Server{Addr: settings.SpectateAddr, Handler: mux}

		go func() {
			logger.Info("Serving spectators", "addr", settings.SpectateAddr)
			if err := spectateServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Could not serve spectators", "error", err)
			}
		}()
		defer func() {
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := spectateServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Could not stop spectator server", "error", err)
			}
		}()
		options = append(options, game.WithObservers(hub))
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	result, err := game.NewSession(terminal, settings, rng, options...).Run(ctx)
	if err != nil {
		logger.Error("Game aborted", "error", err)
		fmt.Printf("error %v\n", err)
		return 1
	}

	fmt.Println(ui.RenderGameOver(lipgloss.DefaultRenderer(), result))
	return 0
}

// newLogger writes to the log file if one is set and discards otherwise:
// stdout belongs to the game while it runs.
func newLogger(settings game.Settings) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(settings.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var out io.Writer = io.Discard
	closeLog := func() {}
	if settings.LogFile != "" {
		file, err := os.OpenFile(settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = file
		closeLog = func() { file.Close() }
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "snake",
	})
	return logger, closeLog, nil
}
