package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerolog writes JSON lines to writer.
func NewZerolog(writer io.Writer, level LogLevel) *ZerologAdapter {
	logger := zerolog.New(writer).
		Level(level.zerolog()).
		With().
		Timestamp().
		Logger()

	return &ZerologAdapter{logger: logger}
}

func NewConsoleLogger(level LogLevel) *ZerologAdapter {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	return NewZerolog(consoleWriter, level)
}

func (z *ZerologAdapter) With(component string) Logger {
	return &ZerologAdapter{logger: z.logger.With().Str("component", component).Logger()}
}

func (z *ZerologAdapter) Debug(message string, fields map[string]interface{}) {
	z.emit(z.logger.Debug(), message, fields)
}

func (z *ZerologAdapter) Info(message string, fields map[string]interface{}) {
	z.emit(z.logger.Info(), message, fields)
}

func (z *ZerologAdapter) Warning(message string, fields map[string]interface{}) {
	z.emit(z.logger.Warn(), message, fields)
}

func (z *ZerologAdapter) Error(message string, err error, fields map[string]interface{}) {
	z.emit(z.logger.Error().Err(err), message, fields)
}

func (z *ZerologAdapter) emit(event *zerolog.Event, message string, fields map[string]interface{}) {
	// disabled levels return a nil event
	if event == nil {
		return
	}
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}
