package stretch

import (
	"github.com/pion/logging"
)

// Option configures a Stream.
type Option func(*config)

type config struct {
	logger logging.LeveledLogger
}

// WithLogger routes the stream's debug and trace output to l.
func WithLogger(l logging.LeveledLogger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
