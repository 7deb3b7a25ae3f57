package chatsync

import "github.com/rs/zerolog"

// NewZerologLogger adapts a zerolog.Logger to the SDK Logger interface.
func NewZerologLogger(l zerolog.Logger) Logger {
	return zerologLogger{l: l}
}

type zerologLogger struct {
	l zerolog.Logger
}

func (z zerologLogger) Debug(msg string, fields map[string]any) {
	z.l.Debug().Fields(fields).Msg(msg)
}

func (z zerologLogger) Info(msg string, fields map[string]any) {
	z.l.Info().Fields(fields).Msg(msg)
}

func (z zerologLogger) Warn(msg string, fields map[string]any) {
	z.l.Warn().Fields(fields).Msg(msg)
}

func (z zerologLogger) Error(msg string, fields map[string]any) {
	z.l.Error().Fields(fields).Msg(msg)
}
