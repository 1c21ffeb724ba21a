package meter

import (
	"log/slog"

	"github.com/epoxyteam/sapo-client-sdk"
)

// LogMeter logs request events using slog.
type LogMeter struct {
	Logger *slog.Logger
}

var _ sapo.Meter = (*LogMeter)(nil)

// NewLogMeter creates a LogMeter with the given logger.
// If logger is nil, slog.Default() is used.
func NewLogMeter(logger *slog.Logger) *LogMeter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMeter{Logger: logger}
}

func (m *LogMeter) OnRequest(e sapo.RequestEvent) {
	m.Logger.Info("request",
		"method", e.Method,
		"path", e.Path,
	)
}

func (m *LogMeter) OnResult(e sapo.ResultEvent) {
	if e.Err == nil {
		m.Logger.Info("result",
			"method", e.Method,
			"path", e.Path,
			"status", e.Status,
			"duration_ms", e.Duration.Milliseconds(),
		)
	} else {
		m.Logger.Warn("result_error",
			"method", e.Method,
			"path", e.Path,
			"status", e.Status,
			"duration_ms", e.Duration.Milliseconds(),
			"error", e.Err,
		)
	}
}
