// internal/interfaces/http/middleware/logger.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// probePaths are logged at debug level so load balancer checks do not flood the log
var probePaths = map[string]bool{"/health": true, "/ready": true}

// Logger writes one structured access log line per request
func Logger(logger *logrus.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		fields := logrus.Fields{
			"request_id":    param.Keys[ctxRequestID],
			"method":        param.Method,
			"path":          param.Path,
			"status_code":   param.StatusCode,
			"latency":       param.Latency,
			"client_ip":     param.ClientIP,
			"response_size": param.BodySize,
		}
		if userID, ok := param.Keys[ctxUserID]; ok {
			fields["user_id"] = userID
		}
		if ua := param.Request.UserAgent(); ua != "" {
			fields["user_agent"] = ua
		}
		entry := logger.WithFields(fields)
		if param.ErrorMessage != "" {
			entry = entry.WithField("error", param.ErrorMessage)
		}

		switch {
		case param.StatusCode >= 500:
			entry.Error("request failed")
		case param.StatusCode >= 400:
			entry.Warn("request rejected")
		case probePaths[param.Path]:
			entry.Debug("probe")
		default:
			entry.Info("request served")
		}
		return ""
	})
}
