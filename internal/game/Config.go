package game

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	MaxInterval        = 700 * time.Millisecond
	MinInterval        = 200 * time.Millisecond
	MaxSpeed           = 20
	InitialSnakeLength = 3

	DefaultBoardWidth  = 40
	DefaultBoardHeight = 20
	MinBoardWidth      = 8
	MinBoardHeight     = 6

	// the board border takes two columns, border plus status line take three rows
	TerminalColumnPadding = 2
	TerminalRowPadding    = 3

	MaxPollFailures      = 3
	foodSamplingAttempts = 64
)

// Settings are the deployment knobs shared by the runner and the server.
type Settings struct {
	BoardWidth          int
	BoardHeight         int
	Host                string
	Port                string
	PrivateKeyPath      string
	MaxConnectionsPerIP int
	LogLevel            string
	LogFile             string
	SpectateAddr        string
	Autopilot           string
	ShutdownTimeout     time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		BoardWidth:          DefaultBoardWidth,
		BoardHeight:         DefaultBoardHeight,
		Host:                "0.0.0.0",
		Port:                "6996",
		PrivateKeyPath:      ".ssh/id_ed25519",
		MaxConnectionsPerIP: 2,
		LogLevel:            "info",
		ShutdownTimeout:     30 * time.Second,
	}
}

// SettingsFromEnv overlays SNAKE_* environment variables on the defaults.
func SettingsFromEnv() Settings {
	settings := DefaultSettings()

	if v, ok := os.LookupEnv("SNAKE_HOST"); ok {
		settings.Host = v
	}
	if v, ok := os.LookupEnv("SNAKE_PORT"); ok {
		settings.Port = v
	}
	if v, ok := os.LookupEnv("SNAKE_PRIVATE_KEY_PATH"); ok {
		settings.PrivateKeyPath = v
	}
	if v, ok := os.LookupEnv("SNAKE_LOG_LEVEL"); ok {
		settings.LogLevel = v
	}
	if v, ok := os.LookupEnv("SNAKE_LOG_FILE"); ok {
		settings.LogFile = v
	}
	if v, ok := os.LookupEnv("SNAKE_SPECTATE_ADDR"); ok {
		settings.SpectateAddr = v
	}
	if v, ok := os.LookupEnv("SNAKE_AUTOPILOT"); ok {
		settings.Autopilot = v
	}
	settings.MaxConnectionsPerIP = envInt("SNAKE_MAX_CONNECTIONS_PER_IP", settings.MaxConnectionsPerIP)
	settings.BoardWidth = envInt("SNAKE_BOARD_WIDTH", settings.BoardWidth)
	settings.BoardHeight = envInt("SNAKE_BOARD_HEIGHT", settings.BoardHeight)

	return settings
}

func envInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// FitBoard clamps the wanted board to what a cols x rows terminal can show.
func FitBoard(wantWidth, wantHeight, cols, rows int) (width, height int, err error) {
	width = min(wantWidth, cols-TerminalColumnPadding)
	height = min(wantHeight, rows-TerminalRowPadding)
	if width < MinBoardWidth || height < MinBoardHeight {
		return 0, 0, fmt.Errorf("%w: %dx%d terminal fits a %dx%d board, need at least %dx%d",
			ErrTerminalTooSmall, cols, rows, width, height, MinBoardWidth, MinBoardHeight)
	}
	return width, height, nil
}

// TickInterval maps a speed level onto the tick duration. Level 0 is the
// slowest, MaxSpeed the fastest.
func TickInterval(speed int) time.Duration {
	speed = max(0, min(speed, MaxSpeed))
	step := (MaxInterval - MinInterval) / MaxSpeed
	return MinInterval + step*time.Duration(MaxSpeed-speed)
}

// speedThreshold is how many points separate two speed levels on a board.
func speedThreshold(width, height int) int {
	return max(1, (width*height)/MaxSpeed)
}
