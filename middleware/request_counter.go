package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/atomic"
)

// RequestCounter counts the RPC requests the server has answered.
type RequestCounter struct {
	count atomic.Int64
}

func NewRequestCounter() *RequestCounter {
	return &RequestCounter{}
}

// Middleware records each request under prefix after it has been handled, whatever its outcome.
func (rc *RequestCounter) Middleware(prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			rc.count.Inc()
		}
	}
}

// Count returns the number of requests seen so far.
func (rc *RequestCounter) Count() int64 {
	return rc.count.Load()
}
