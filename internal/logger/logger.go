package logger

import (
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger is the minimal logging surface used across pipeline stages.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// component prefixes every record with the stage name so interleaved
// output stays attributable.
type component struct {
	name string
	l    *slog.Logger
}

func (c *component) Debugf(format string, args ...any) { c.l.Debugf("["+c.name+"] "+format, args...) }
func (c *component) Infof(format string, args ...any)  { c.l.Infof("["+c.name+"] "+format, args...) }
func (c *component) Warnf(format string, args ...any)  { c.l.Warnf("["+c.name+"] "+format, args...) }
func (c *component) Errorf(format string, args ...any) { c.l.Errorf("["+c.name+"] "+format, args...) }

// New creates a console logger for one pipeline component.
func New(name string, level string) Logger {
	lv := slog.LevelByName(NormalizeLevel(level))

	var levels slog.Levels
	for _, l := range slog.AllLevels {
		if l <= lv {
			levels = append(levels, l)
		}
	}

	h := handler.NewConsoleHandler(levels)
	return &component{name: name, l: slog.NewWithHandlers(h)}
}

// Silent returns a logger that only reports errors. Used when a stage runs
// in silent mode but item failures must still be visible.
func Silent(name string) Logger {
	return New(name, "error")
}

// NormalizeLevel maps user-supplied level strings onto the supported set.
func NormalizeLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return strings.ToLower(level)
	default:
		return "info"
	}
}
