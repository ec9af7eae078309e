package notify

import "github.com/avstation/stationd/infra/logger"

// LogSink writes station notifications to the structured log.
type LogSink struct {
	log logger.Logger
}

// NewLogSink creates a sink logging under the given component name.
func NewLogSink(component string) *LogSink {
	return &LogSink{log: logger.New(component)}
}

// Receive logs the notification message.
func (s *LogSink) Receive(message string) error {
	s.log.Infof("%s", message)
	return nil
}
