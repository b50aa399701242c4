package history

import "time"

// Record is one command run as shown in the history log. Command holds the
// redacted command text only; credentials are never stored.
type Record struct {
	ID           string    `gorm:"type:text;primaryKey"`
	Action       string    `gorm:"type:text;not null;index"`
	Command      string    `gorm:"type:text;not null"`
	Success      bool      `gorm:"not null"`
	ExitCode     *int      `gorm:"type:integer"`
	ErrorMessage string    `gorm:"type:text"`
	DurationMs   int64     `gorm:"not null"`
	CreatedAt    time.Time `gorm:"type:timestamp;not null;index"`
}
