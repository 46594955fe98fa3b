package logging

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Adapter exposes a zerolog.Logger through the key/value logging interface
// the downloader accepts.
type Adapter struct {
	logger zerolog.Logger
}

// NewAdapter wraps logger.
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

func (a *Adapter) Debug(msg string, keysAndValues ...interface{}) {
	emit(a.logger.Debug(), msg, keysAndValues)
}

func (a *Adapter) Info(msg string, keysAndValues ...interface{}) {
	emit(a.logger.Info(), msg, keysAndValues)
}

func (a *Adapter) Error(msg string, keysAndValues ...interface{}) {
	emit(a.logger.Error(), msg, keysAndValues)
}

func emit(e *zerolog.Event, msg string, keysAndValues []interface{}) {
	if e == nil {
		return
	}
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		if i+1 >= len(keysAndValues) {
			e = e.Str(key, "(missing)")
			break
		}
		switch v := keysAndValues[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}
