package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventAuthFailed           EventType = "auth_failed"
	EventUnauthorizedAccess   EventType = "unauthorized_access"
	EventForbiddenAccess      EventType = "forbidden_access"
	EventRateLimitTriggered   EventType = "rate_limit_triggered"
	EventUploadRejected       EventType = "upload_rejected"
	EventVerificationReviewed EventType = "verification_reviewed"
	EventMalwareDetected      EventType = "malware_detected"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time
	Event        EventType
	SubjectType  string // "email", "ip", "user_id"
	SubjectValue string // Masked or hashed for PII
	IP           string
	UserAgent    string
	RequestID    string
	Details      map[string]any
}

// SecurityLogger writes security events as structured zap entries
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var (
	defaultLogger *SecurityLogger
	defaultOnce   sync.Once
)

// NewSecurityLogger builds a production zap logger writing JSON to stdout
func NewSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger = zap.NewNop()
	}
	return NewSecurityLoggerWith(logger, serviceName, environment)
}

// NewSecurityLoggerWith wraps an existing zap logger
func NewSecurityLoggerWith(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// SetDefault replaces the process-wide security logger
func SetDefault(sl *SecurityLogger) {
	defaultOnce.Do(func() {})
	defaultLogger = sl
}

// DefaultLogger returns the process-wide security logger
func DefaultLogger() *SecurityLogger {
	defaultOnce.Do(func() {
		if defaultLogger == nil {
			defaultLogger = NewSecurityLogger("diving-mate-api", Environment())
		}
	})
	return defaultLogger
}

// Log logs a security event
func (sl *SecurityLogger) Log(_ context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	severity := SeverityOf(event.Event)

	fields := []zap.Field{
		zap.String("service", sl.serviceName),
		zap.String("env", sl.environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(severity)),
		zap.Time("event_time", event.Timestamp),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	sl.zapLogger.Log(severity.level(), string(event.Event), fields...)
}

// LogAuthFailed logs a rejected bearer token
func (sl *SecurityLogger) LogAuthFailed(ctx context.Context, ip, userAgent, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:       EventAuthFailed,
		SubjectType: "ip",
		IP:          ip,
		UserAgent:   userAgent,
		RequestID:   requestID,
		Details:     map[string]any{"reason": reason},
	})
}

// LogRateLimitTriggered logs when rate limiting is triggered
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]any{"endpoint": endpoint},
	})
}

// LogForbidden logs an authenticated caller reaching for another role's route
func (sl *SecurityLogger) LogForbidden(ctx context.Context, userID, role, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventForbiddenAccess,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		Details:      map[string]any{"role": role, "endpoint": endpoint},
	})
}

// LogUploadRejected logs a file that failed content validation
func (sl *SecurityLogger) LogUploadRejected(ctx context.Context, userID, filename, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventUploadRejected,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		Details:      map[string]any{"filename": filename, "reason": reason},
	})
}

// LogMalwareDetected logs an upload the scanner flagged
func (sl *SecurityLogger) LogMalwareDetected(ctx context.Context, userID, filename, threat, scanner string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventMalwareDetected,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		Details:      map[string]any{"filename": filename, "threat": threat, "scanner": scanner},
	})
}

// LogVerificationReviewed records an admin decision
func (sl *SecurityLogger) LogVerificationReviewed(ctx context.Context, adminID, verificationID, action string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventVerificationReviewed,
		SubjectType:  "user_id",
		SubjectValue: HashValue(adminID),
		Details:      map[string]any{"verification_id": verificationID, "action": action},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***" + email[max(at, 0):]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue creates a short SHA256 digest of a value for logging without PII
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

// Environment maps GIN_MODE to an environment name
func Environment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
