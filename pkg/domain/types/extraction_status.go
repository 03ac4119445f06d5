package types

import "fmt"

// ExtractionStatus represents the memory extraction state of a conversation.
// The zero value means the conversation has never been considered.
type ExtractionStatus string

const (
	ExtractionStatusUnset      ExtractionStatus = ""
	ExtractionStatusPending    ExtractionStatus = "PENDING"
	ExtractionStatusProcessing ExtractionStatus = "PROCESSING"
	ExtractionStatusCompleted  ExtractionStatus = "COMPLETED"
	ExtractionStatusFailed     ExtractionStatus = "FAILED"
)

// AllExtractionStatuses returns all valid extraction statuses
func AllExtractionStatuses() []ExtractionStatus {
	return []ExtractionStatus{
		ExtractionStatusUnset,
		ExtractionStatusPending,
		ExtractionStatusProcessing,
		ExtractionStatusCompleted,
		ExtractionStatusFailed,
	}
}

// IsValid checks if the extraction status is valid
func (s ExtractionStatus) IsValid() bool {
	switch s {
	case ExtractionStatusUnset,
		ExtractionStatusPending,
		ExtractionStatusProcessing,
		ExtractionStatusCompleted,
		ExtractionStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status is a final state of an attempt
func (s ExtractionStatus) IsTerminal() bool {
	return s == ExtractionStatusCompleted || s == ExtractionStatusFailed
}

// String returns the string representation of the extraction status
func (s ExtractionStatus) String() string {
	return string(s)
}

// ParseExtractionStatus parses a string into an ExtractionStatus
func ParseExtractionStatus(s string) (ExtractionStatus, error) {
	status := ExtractionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid extraction status: %s", s)
	}
	return status, nil
}
