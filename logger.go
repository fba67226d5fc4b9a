package httpcore

import (
	"go.uber.org/zap"
)

// Logger is used for logging formatted messages. Matches the teacher's
// Logger interface exactly so *log.Logger still satisfies it.
type Logger interface {
	// Printf must have the same semantics as log.Printf.
	Printf(format string, args ...interface{})
}

// zapLogger adapts a *zap.SugaredLogger to Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l *zapLogger) Printf(format string, args ...interface{}) {
	l.s.Infof(format, args...)
}

// NewDefaultLogger builds the Logger used by a Server whose Logger field is
// left nil: a production zap.Logger sugared down to Logger's Printf shape.
func NewDefaultLogger() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return &zapLogger{s: z.Sugar()}
}

var defaultLogger = NewDefaultLogger()
