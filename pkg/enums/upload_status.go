package enums

import "fmt"

// UploadStatus maps to the upload_status enum in Postgres.
type UploadStatus string

const (
	UploadStatusCompleted UploadStatus = "completed"
	UploadStatusFailed    UploadStatus = "failed"
)

var validUploadStatuses = []UploadStatus{
	UploadStatusCompleted,
	UploadStatusFailed,
}

// String implements fmt.Stringer.
func (u UploadStatus) String() string {
	return string(u)
}

// IsValid reports whether the value matches the canonical upload_status enum.
func (u UploadStatus) IsValid() bool {
	for _, candidate := range validUploadStatuses {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUploadStatus converts raw input into UploadStatus.
func ParseUploadStatus(value string) (UploadStatus, error) {
	for _, candidate := range validUploadStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid upload status %q", value)
}
