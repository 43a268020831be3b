package security

import "go.uber.org/zap/zapcore"

// Severity is derived from EventType, never supplied by callers
type Severity string

const (
	SeverityINFO     Severity = "INFO"
	SeverityWARN     Severity = "WARN"
	SeverityHIGH     Severity = "HIGH"
	SeverityCRITICAL Severity = "CRITICAL"
)

var eventSeverity = map[EventType]Severity{
	EventVerificationReviewed: SeverityINFO,
	EventAuthFailed:           SeverityWARN,
	EventRateLimitTriggered:   SeverityWARN,
	EventUploadRejected:       SeverityWARN,
	EventUnauthorizedAccess:   SeverityHIGH,
	EventForbiddenAccess:      SeverityHIGH,
	EventMalwareDetected:      SeverityCRITICAL,
}

// SeverityOf returns the severity of an event type; unknown types are WARN
func SeverityOf(event EventType) Severity {
	if s, ok := eventSeverity[event]; ok {
		return s
	}
	return SeverityWARN
}

func (s Severity) level() zapcore.Level {
	switch s {
	case SeverityINFO:
		return zapcore.InfoLevel
	case SeverityHIGH, SeverityCRITICAL:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
