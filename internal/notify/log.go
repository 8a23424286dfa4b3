package notify

import "go.uber.org/zap"

// LogSink writes alerts to the structured log. It is always registered
// so a headless deployment still surfaces new signals somewhere.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a log-backed notifier.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Notify(alert Alert) error {
	s.logger.Info("new signal",
		zap.String("symbol", alert.Symbol),
		zap.String("direction", string(alert.Direction)),
		zap.Duration("ttl", alert.TTL),
	)
	return nil
}
