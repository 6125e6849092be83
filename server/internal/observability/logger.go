// Package observability holds the shared structured-logging field names and
// the in-process request metrics used by the HTTP layer.
package observability

import "github.com/google/uuid"

const (
	// LogFieldRequestID is the field name for request ID.
	LogFieldRequestID = "request_id"
	// LogFieldUserID is the field name for user ID.
	LogFieldUserID = "user_id"
	// LogFieldOperation is the field name for the review operation.
	LogFieldOperation = "operation"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldErrorCode is the field name for error code.
	LogFieldErrorCode = "error_code"
	// LogFieldCardUID is the field name for card UID.
	LogFieldCardUID = "card_uid"
	// LogFieldSessionID is the field name for study session ID.
	LogFieldSessionID = "session_id"
	// LogFieldDeck is the field name for deck.
	LogFieldDeck = "deck"
	// LogFieldQuality is the field name for the quality rating.
	LogFieldQuality = "quality"
)

// GenerateRequestID generates a unique request ID using a full UUID.
func GenerateRequestID() string {
	return uuid.New().String()
}
