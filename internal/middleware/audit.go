package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

const auditResourceIDKey = "audit_resource_id"

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, log *models.AuditLog) error
}

// SetAuditResourceID names the record a create produced, since its id is not in the path.
func SetAuditResourceID(c *gin.Context, id string) {
	c.Set(auditResourceIDKey, id)
}

// Audit records successful writes against resource once the handler has finished.
func Audit(recorder AuditRecorder, resource string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if recorder == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			return
		}

		entry := &models.AuditLog{
			Action:     auditAction(c.Request.Method),
			Resource:   resource,
			ResourceID: auditResourceID(c),
			ScheduleID: models.ScheduleScope(c.Request.Context()),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		}
		if claims, ok := CurrentClaims(c); ok {
			userID := claims.UserID
			entry.UserID = &userID
		}
		details, err := json.Marshal(map[string]interface{}{
			"path":       c.FullPath(),
			"method":     c.Request.Method,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if err == nil {
			entry.Details = details
		}

		ctx := context.WithoutCancel(c.Request.Context())
		if err := recorder.Record(ctx, entry); err != nil {
			logger.Error("failed to record audit log",
				zap.String("resource", resource),
				zap.String("action", entry.Action),
				zap.Error(err),
			)
		}
	}
}

func auditAction(method string) string {
	switch method {
	case http.MethodPost:
		return models.AuditActionCreate
	case http.MethodDelete:
		return models.AuditActionDelete
	default:
		return models.AuditActionUpdate
	}
}

func auditResourceID(c *gin.Context) *string {
	id := c.Param("id")
	if id == "" {
		id = c.GetString(auditResourceIDKey)
	}
	if id == "" {
		return nil
	}
	return &id
}
