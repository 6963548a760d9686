package ui

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Logger prints user facing lines and mirrors them into the structured log.
type Logger struct {
	Debug bool

	z *zap.SugaredLogger
}

func NewLogger(debug bool, z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}

	return &Logger{Debug: debug, z: z.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.z.Debugf(strings.TrimRight(format, "\n"), args...)
	if l.Debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format, args...)
	}
}

func (l *Logger) Infof(format string, args ...any) {
	l.z.Infof(strings.TrimRight(format, "\n"), args...)
	fmt.Printf("[INFO] "+format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.z.Errorf(strings.TrimRight(format, "\n"), args...)
	fmt.Fprintf(os.Stderr, "[ERROR] "+format, args...)
}
