package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JobStatus represents the lifecycle state of a processing job.
// Transitions are forward-only: queued -> running -> succeeded | failed.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is a final state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// FileRef points at a stored blob belonging to a job.
// Size is only meaningful for input files.
type FileRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size,omitempty"`
}

// FileRefList is a custom type for storing file reference lists as JSON in the database.
type FileRefList []FileRef

// Value implements the driver.Valuer interface for database serialization.
func (l FileRefList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (l *FileRefList) Scan(value interface{}) error {
	if value == nil {
		*l = FileRefList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan FileRefList")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, l)
}

// JSONMap is a custom type for storing opaque option blobs as JSON in the database.
// The map is interpreted only by the category handler matching the job's tool.
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for database serialization.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JSONMap")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, m)
}

// Job represents one user-requested file transformation tracked through its lifecycle.
// ToolName, InputFiles, and Options are immutable after creation. Once a terminal
// status is reached, exactly one of OutputFiles / ErrorMessage is populated.
type Job struct {
	ID           string      `gorm:"type:text;primaryKey" json:"id"`
	ToolName     string      `gorm:"type:text;not null;index" json:"tool_name"`
	Status       JobStatus   `gorm:"type:text;index;default:queued" json:"status"`
	Progress     int         `gorm:"default:0" json:"progress"`
	InputFiles   FileRefList `gorm:"type:text" json:"input_files"`
	OutputFiles  FileRefList `gorm:"type:text" json:"output_files"`
	Options      JSONMap     `gorm:"type:text" json:"options"`
	ErrorMessage string      `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName returns the database table name for Job.
func (Job) TableName() string {
	return "jobs"
}

// OutputView is an output file reference decorated with a signed download URL.
type OutputView struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// JobView is the read model returned by the status endpoint. Output files carry
// freshly signed download URLs; nothing in the view is persisted.
type JobView struct {
	ID           string       `json:"id"`
	ToolName     string       `json:"tool_name"`
	Status       JobStatus    `json:"status"`
	Progress     int          `json:"progress"`
	InputFiles   FileRefList  `json:"input_files"`
	OutputFiles  []OutputView `json:"output_files"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
