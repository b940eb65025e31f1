package pipeline

import (
	"sort"

	"github.com/google/uuid"

	"github.com/jonathan/audit-sheets/internal/db"
	"github.com/jonathan/audit-sheets/internal/manifest"
	"github.com/jonathan/audit-sheets/internal/sheets"
)

// ErrorKind classifies why an entry failed
type ErrorKind string

// Error kinds
const (
	KindInput       ErrorKind = "input"       // unreadable or malformed report
	KindRemote      ErrorKind = "remote"      // store request failed
	KindConsistency ErrorKind = "consistency" // header or capacity not as written
)

// Outcome statuses
const (
	StatusSucceeded = db.OutcomeSucceeded
	StatusFailed    = db.OutcomeFailed
)

// Input steps; store failures use the sheets.Step names
const (
	StepLoad    = "load"
	StepExtract = "extract"
)

// Outcome is the result of processing one manifest entry
type Outcome struct {
	Index    int
	Entry    manifest.Entry
	Hostname string
	Status   string
	Kind     ErrorKind
	Step     string
	Err      error
	Result   *sheets.Result
}

// Record converts the outcome to its ledger form
func (o Outcome) Record() db.EntryOutcome {
	rec := db.EntryOutcome{
		EntryIndex: o.Index,
		ReportPath: o.Entry.Name(),
		Hostname:   o.Hostname,
		Status:     o.Status,
		ErrorKind:  string(o.Kind),
		FailedStep: o.Step,
	}
	if o.Err != nil {
		rec.ErrorMessage = o.Err.Error()
	}
	if o.Result != nil {
		rec.ColumnsAdded = len(o.Result.Added)
		rec.TableCreated = o.Result.Created
	}
	return rec
}

// Summary collects the outcomes of a run in manifest order
type Summary struct {
	RunID    uuid.UUID
	Outcomes []Outcome
}

// Succeeded returns the number of entries appended successfully
func (s *Summary) Succeeded() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == StatusSucceeded {
			n++
		}
	}
	return n
}

// Failed returns the number of entries that failed
func (s *Summary) Failed() int {
	return len(s.Outcomes) - s.Succeeded()
}

// FailedOf returns the failed outcomes of the given kind
func (s *Summary) FailedOf(kind ErrorKind) []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed && o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}

// SucceededHostnames returns the distinct hostnames with at least one appended row
func (s *Summary) SucceededHostnames() []string {
	return s.hostnames(StatusSucceeded)
}

// FailedHostnames returns the distinct hostnames with at least one failed entry.
// Entries that failed before their hostname was known are not included.
func (s *Summary) FailedHostnames() []string {
	return s.hostnames(StatusFailed)
}

func (s *Summary) hostnames(status string) []string {
	seen := map[string]bool{}
	var out []string
	for _, o := range s.Outcomes {
		if o.Status != status || o.Hostname == "" || seen[o.Hostname] {
			continue
		}
		seen[o.Hostname] = true
		out = append(out, o.Hostname)
	}
	sort.Strings(out)
	return out
}
