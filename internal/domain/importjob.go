package domain

import "time"

type ImportStatus string

const (
	ImportPending    ImportStatus = "pending"
	ImportProcessing ImportStatus = "processing"
	ImportCompleted  ImportStatus = "completed"
	ImportFailed     ImportStatus = "failed"
)

func (s ImportStatus) IsTerminal() bool {
	return s == ImportCompleted || s == ImportFailed
}

// String representation (for logging)
func (s ImportStatus) String() string {
	return string(s)
}

// ImportJob tracks one server-side CSV import of products/variants/images.
type ImportJob struct {
	ID            string       `json:"id"`
	FileName      string       `json:"file_name"`
	Status        ImportStatus `json:"status"`
	TotalRows     int          `json:"total_rows"`
	ProcessedRows int          `json:"processed_rows"`
	ErrorRows     int          `json:"error_rows"`
	ErrorMessage  string       `json:"error_message,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
