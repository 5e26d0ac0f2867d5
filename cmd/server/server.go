package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Mshel/termsnake/internal/game"
	"github.com/Mshel/termsnake/internal/ui"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/google/uuid"
)

type connectionLimiter struct {
	maxPerIP int

	mu        sync.Mutex
	ipCounter map[string]int
}

func newConnectionLimiter(maxPerIP int) *connectionLimiter {
	return &connectionLimiter{maxPerIP: maxPerIP, ipCounter: make(map[string]int)}
}

func getIP(s ssh.Session) string {
	if addr, ok := s.RemoteAddr().(*net.TCPAddr); ok {
		return addr.IP.String()
	}
	return s.RemoteAddr().String()
}

// acquire takes a slot for ip, returning the count it saw and whether it fit.
func (l *connectionLimiter) acquire(ip string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.ipCounter[ip]
	if current >= l.maxPerIP {
		return current, false
	}
	l.ipCounter[ip]++
	return current + 1, true
}

func (l *connectionLimiter) release(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ipCounter[ip]--
	if l.ipCounter[ip] <= 0 {
		delete(l.ipCounter, ip)
		return 0
	}
	return l.ipCounter[ip]
}

func (l *connectionLimiter) Middleware(next ssh.Handler) ssh.Handler {
	return func(s ssh.Session) {
		ip := getIP(s)

		count, ok := l.acquire(ip)
		if !ok {
			log.Warn("Connection denied: IP limit exceeded", "ip", ip, "attempted_count", count+1, "current_limit", l.maxPerIP)
			wish.Fatalf(s, "Too many active connections from your IP (%d/%d). Please try again later.\r\n", count+1, l.maxPerIP)
			return
		}

		log.Info("Connection accepted", "ip", ip, "current_count", count, "limit", l.maxPerIP)
		next(s)
		log.Info("Connection closed and counter decremented", "ip", ip, "count_after", l.release(ip))
	}
}

// gameMiddleware plays one game per SSH session on the session's pty.
func gameMiddleware(settings game.Settings) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			logger := log.With("session", uuid.NewString(), "user", s.User())

			terminal, err := ui.NewSessionTerminal(s, logger)
			if err != nil {
				logger.Warn("Session rejected", "error", err)
				wish.Fatalln(s, err)
				return
			}

			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			result, err := game.NewSession(terminal, settings, rng, game.WithLogger(logger)).Run(s.Context())
			if err != nil {
				logger.Error("Game aborted", "error", err)
				wish.Fatalln(s, fmt.Sprintf("error %v", err))
				return
			}

			wish.Println(s, ui.RenderGameOver(bubbletea.MakeRenderer(s), result))
			next(s)
		}
	}
}

func main() {
	settings := game.SettingsFromEnv()

	level, err := log.ParseLevel(settings.LogLevel)
	if err != nil {
		log.Warn("Unknown log level, using info", "level", settings.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	limiter := newConnectionLimiter(settings.MaxConnectionsPerIP)
	address := net.JoinHostPort(settings.Host, settings.Port)

	sshServer, serverCreateErr := wish.NewServer(
		wish.WithAddress(address),
		wish.WithHostKeyPath(settings.PrivateKeyPath),
		wish.WithMiddleware(
			gameMiddleware(settings),
			logging.Middleware(),
			activeterm.Middleware(),
			limiter.Middleware,
		),
	)
	if serverCreateErr != nil {
		log.Error("Failed to create ssh server", "error", serverCreateErr)
		os.Exit(1)
	}

	serverDoneChannel := make(chan os.Signal, 1)
	signal.Notify(serverDoneChannel, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	log.Info("Starting SSH server", "host", settings.Host, "port", settings.Port)
	go func() {
		if err := sshServer.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Error("Could not start server", "error", err)
			serverDoneChannel <- nil
		}
	}()

	<-serverDoneChannel

	log.Info("Stopping SSH server")
	ctx, cancel := context.WithTimeout(context.Background(), settings.ShutdownTimeout)
	defer cancel()
	if err := sshServer.Shutdown(ctx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		log.Error("Could not stop server", "error", err)
	}
}
