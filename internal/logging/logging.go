package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	gologme "github.com/gologme/log"
)

// levels is ordered from most to least severe.
var levels = []string{"error", "warn", "info", "debug"}

// New returns a leveled logger writing to w with a colored component
// prefix. Every level up to and including level is enabled.
func New(w io.Writer, component string, level string) *gologme.Logger {
	green := color.New(color.FgGreen).SprintfFunc()
	l := gologme.New(w, fmt.Sprintf("[ %s ] ", green(component)), gologme.LstdFlags|gologme.Lmsgprefix)
	EnableLevels(l, level)
	return l
}

// EnableLevels enables every level up to and including level. An unknown
// level enables error, warn and info.
func EnableLevels(l *gologme.Logger, level string) {
	level = strings.ToLower(strings.TrimSpace(level))
	known := false
	for _, lv := range levels {
		if lv == level {
			known = true
			break
		}
	}
	if !known {
		level = "info"
	}

	for _, lv := range levels {
		l.EnableLevel(lv)
		if lv == level {
			return
		}
	}
}

// Discard returns a logger that drops everything.
func Discard() *gologme.Logger {
	return gologme.New(io.Discard, "", 0)
}

// OpenFile opens path for appending, creating parent directories.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return f, nil
}
