// file: internal/server/logger.go
// version: 2.0.0
// guid: 1d2e3f4a-5b6c-7d8e-9f0a-1b2c3d4e5f6a

package server

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware tags every request with an id, reusing the caller's.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	if id, ok := c.Get("request_id"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return "-"
}

// OperationLogger tracks the lifecycle of a handler operation
type OperationLogger struct {
	handler    string
	method     string
	path       string
	startTime  time.Time
	requestID  string
	resourceID string
}

// NewOperationLogger creates a logger bound to the current request.
func NewOperationLogger(handler string, c *gin.Context) *OperationLogger {
	return &OperationLogger{
		handler:   handler,
		method:    c.Request.Method,
		path:      c.Request.URL.Path,
		startTime: time.Now(),
		requestID: requestID(c),
	}
}

// SetResourceID sets the resource ID being operated on
func (ol *OperationLogger) SetResourceID(id string) {
	ol.resourceID = id
}

// LogStart logs the start of the operation
func (ol *OperationLogger) LogStart() {
	log.Printf("[INFO] %s [request-id: %s]", ol.describe("[START]", ""), ol.requestID)
}

// LogSuccess logs the successful completion of the operation
func (ol *OperationLogger) LogSuccess(statusCode int) {
	suffix := fmt.Sprintf("(%d) in %v", statusCode, time.Since(ol.startTime))
	log.Printf("[INFO] %s [request-id: %s]", ol.describe("[SUCCESS]", suffix), ol.requestID)
}

// LogWarning logs a degraded outcome that still produced a response.
func (ol *OperationLogger) LogWarning(message string) {
	log.Printf("[WARN] %s: %s [request-id: %s]", ol.handler, message, ol.requestID)
}

// LogError logs an error that occurred during the operation
func (ol *OperationLogger) LogError(statusCode int, err error) {
	suffix := fmt.Sprintf("(%d) in %v: %v", statusCode, time.Since(ol.startTime), err)
	log.Printf("[ERROR] %s [request-id: %s]", ol.describe("[ERROR]", suffix), ol.requestID)
}

func (ol *OperationLogger) describe(tag, suffix string) string {
	msg := fmt.Sprintf("%s %s %s", tag, ol.method, ol.path)
	if suffix != "" {
		msg += " " + suffix
	}
	if ol.resourceID != "" {
		msg = fmt.Sprintf("%s (resource: %s)", msg, ol.resourceID)
	}
	return msg
}
