package services

import "github.com/stwalsh4118/estatedesk/internal/logger"

// bestEffort runs a secondary write that must never fail the operation it
// follows. Failures are logged at warn level and reported as false.
func bestEffort(log *logger.Logger, op string, fields map[string]interface{}, fn func() error) bool {
	if err := fn(); err != nil {
		logFields := make(map[string]interface{}, len(fields)+2)
		for k, v := range fields {
			logFields[k] = v
		}
		logFields["operation"] = op
		logFields["error"] = err.Error()
		log.Warn("Best-effort write failed", logFields)
		return false
	}
	return true
}
