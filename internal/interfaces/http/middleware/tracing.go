// Package middleware provides the HTTP middleware chain: auth, tracing,
// metrics, rate limiting and the common request plumbing.
package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Limits on header-sourced trace attributes.
const (
	MaxRequestIDLength = 128
	MaxBranchIDLength  = 64
)

// Branch ids taken from headers must be hyphenated UUIDs.
var branchIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "assetflow-backend",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig returns the otelgin server span middleware. The span
// only lives while the downstream chain runs, so attribute enrichment is
// done by TracingAttributeInjector placed later in the chain.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passthrough
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector records request identity on the server span. It
// has to run downstream of Tracing, while the span is still open; put one
// instance after Tracing for header-derived attributes and, on
// authenticated routes, another after the JWT middleware so claims are
// picked up too.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if attrs := identityAttrs(c); len(attrs) > 0 {
				span.SetAttributes(attrs...)
			}
		}
		c.Next()
	}
}

// identityAttrs collects request_id, branch_id (JWT claims or the
// X-Branch-ID header) and user_id (JWT claims only).
func identityAttrs(c *gin.Context) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if id := traceRequestID(c); id != "" {
		attrs = append(attrs, attribute.String("request_id", id))
	}
	if id := traceBranchID(c); id != "" {
		attrs = append(attrs, attribute.String("branch_id", id))
	}
	if id := c.GetString(JWTUserIDKey); id != "" {
		attrs = append(attrs, attribute.String("user_id", id))
	}
	return attrs
}

// traceRequestID prefers the id set by the RequestID middleware and falls
// back to the X-Request-ID header, truncated to MaxRequestIDLength.
func traceRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > MaxRequestIDLength {
		headerID = headerID[:MaxRequestIDLength]
	}
	return headerID
}

// traceBranchID prefers JWT claims; the X-Branch-ID header is only trusted
// when it is a well-formed UUID.
func traceBranchID(c *gin.Context) string {
	if id := c.GetString(JWTBranchIDKey); id != "" {
		return id
	}
	if header := c.GetHeader("X-Branch-ID"); validBranchHeader(header) {
		return header
	}
	return ""
}

func validBranchHeader(branchID string) bool {
	return len(branchID) <= MaxBranchIDLength && branchIDPattern.MatchString(branchID)
}

// SpanErrorMarker marks the span with error status for 4xx/5xx responses.
// Place it after the Tracing middleware in the chain.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span.SetStatus(codes.Error, errorStatusText(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}

func errorStatusText(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusUnauthorized:
		return "Unauthorized"
	case status == http.StatusForbidden:
		return "Forbidden"
	case status == http.StatusNotFound:
		return "Not Found"
	default:
		return "Client Error"
	}
}
