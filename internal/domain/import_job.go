package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// JobKind represents the type of import a job performs.
// Values include JobKindSQLDump and JobKindCSVImport.
type JobKind string

const (
	JobKindSQLDump   JobKind = "sql_dump"
	JobKindCSVImport JobKind = "csv_import"
)

// JobStatus represents the lifecycle state of an import job.
// Values include JobStatusPending, JobStatusProcessing,
// JobStatusCompleted, JobStatusFailed, and JobStatusCancelled.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// JobOptions is a custom type for storing per-job options as JSON in
// the database.
type JobOptions map[string]interface{}

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the options.
//   - error: non-nil if marshaling fails.
func (o JobOptions) Value() (driver.Value, error) {
	if o == nil {
		return "{}", nil
	}
	return json.Marshal(o)
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (o *JobOptions) Scan(value interface{}) error {
	if value == nil {
		*o = JobOptions{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JobOptions")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, o)
}

// JobResult is a custom type for storing final per-entity import counts
// as JSON in the database.
type JobResult map[string]int

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the counts.
//   - error: non-nil if marshaling fails.
func (r JobResult) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	return json.Marshal(r)
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (r *JobResult) Scan(value interface{}) error {
	if value == nil {
		*r = JobResult{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JobResult")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, r)
}

// ImportJob represents one asynchronous import run and its progress
// metadata. Processed/total counters are updated incrementally during
// the reading phase and at phase completion otherwise; the record is
// only ever written by the orchestrator that owns the run.
type ImportJob struct {
	ID               string     `gorm:"type:text;primaryKey" json:"id"`
	Kind             JobKind    `gorm:"type:text;not null" json:"kind"`
	Filename         string     `gorm:"type:text;not null" json:"filename"`
	Status           JobStatus  `gorm:"type:text;index;default:pending" json:"status"`
	TotalRecords     int        `gorm:"default:0" json:"total_records"`
	ProcessedRecords int        `gorm:"default:0" json:"processed_records"`
	SkippedRecords   int        `gorm:"default:0" json:"skipped_records"`
	Options          JobOptions `gorm:"type:text" json:"options,omitempty"`
	Result           JobResult  `gorm:"type:text" json:"result,omitempty"`
	Error            string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName returns the database table name for ImportJob.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ImportJob) TableName() string {
	return "import_jobs"
}

// IsTerminal reports whether the job has reached a final state.
// Parameters: none.
// Returns:
//   - bool: true for completed, failed, or cancelled jobs.
func (j *ImportJob) IsTerminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// Percent returns the rounded completion percentage derived from the
// processed and total counters.
// Parameters: none.
// Returns:
//   - int: round(processed/total*100), 0 when total is unknown.
func (j *ImportJob) Percent() int {
	if j.TotalRecords <= 0 {
		return 0
	}
	return int(math.Round(float64(j.ProcessedRecords) / float64(j.TotalRecords) * 100))
}

// DurationString returns a human-readable duration from StartedAt to
// CompletedAt, or to now while the job is still running.
// Parameters: none.
// Returns:
//   - string: "Ns", "Nm Ss", or "Nh Nm"; empty before the job starts.
func (j *ImportJob) DurationString() string {
	if j.StartedAt == nil {
		return ""
	}
	end := time.Now()
	if j.CompletedAt != nil {
		end = *j.CompletedAt
	}
	d := end.Sub(*j.StartedAt)
	if d < 0 {
		d = 0
	}
	secs := int(d.Seconds())
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	}
}
