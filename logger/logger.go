// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package logger

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Logger hands log lines to the log page through Prints. Lines are dropped
// when nobody drains the channel fast enough.
type Logger struct {
	Prints chan string

	file   zerolog.Logger
	toFile bool
}

var _ LoggerInterface = (*Logger)(nil)

func Init() *Logger {
	return &Logger{Prints: make(chan string, 100)}
}

// SetOutput mirrors every line to w as JSON.
func (l *Logger) SetOutput(w io.Writer) {
	l.file = zerolog.New(w).With().Timestamp().Logger()
	l.toFile = true
}

func (l *Logger) Print(s string) {
	if l.toFile {
		l.file.Info().Msg(s)
	}
	l.send(s)
}

func (l *Logger) Printf(s string, as ...interface{}) {
	l.Print(fmt.Sprintf(s, as...))
}

func (l *Logger) PrintError(source string, err error) {
	if l.toFile {
		l.file.Error().Str("source", source).Err(err).Send()
	}
	l.send(fmt.Sprintf("Error(%s) -> %s", source, err))
}

func (l *Logger) send(s string) {
	select {
	case l.Prints <- s:
	default:
	}
}
