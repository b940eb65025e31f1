package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Outcome status constants
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// SyncRun is one invocation of the synchronizer over a manifest
type SyncRun struct {
	ID          uuid.UUID  `json:"id"`
	SheetID     string     `json:"sheet_id"`
	Entries     int        `json:"entries"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// EntryOutcome is the ledger record for one manifest entry
type EntryOutcome struct {
	EntryIndex   int    `json:"entry_index"`
	ReportPath   string `json:"report_path"`
	Hostname     string `json:"hostname,omitempty"`
	Status       string `json:"status"`
	ErrorKind    string `json:"error_kind,omitempty"`
	FailedStep   string `json:"failed_step,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ColumnsAdded int    `json:"columns_added"`
	TableCreated bool   `json:"table_created"`
}
