package report

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/jonathan/audit-sheets/internal/manifest"
	"github.com/jonathan/audit-sheets/internal/types"
)

// Column namespaces. Metadata columns carry no prefix; the three groups never collide.
const (
	SummaryPrefix = "summary."
	AuditPrefix   = "audit."
)

// MetadataColumns lists the fixed metadata columns in the order they are emitted
var MetadataColumns = []string{
	"requestedUrl",
	"finalUrl",
	"fetchTime",
	"userAgent",
	"lighthouseVersion",
	"gatherMode",
	"benchmarkIndex",
	"formFactor",
	"throttlingMethod",
	"width",
	"height",
	"deviceScaleFactor",
}

// Extract flattens a report into a Row: metadata, then category scores, then audits sorted by id.
// Category scores from the report win over the entry's precomputed summary for the same category.
func Extract(r *Report, entry manifest.Entry) (*types.Row, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: report is nil", ErrMissingField)
	}

	row := types.NewRow()

	meta := []any{
		r.RequestedURL,
		r.EffectiveFinalURL(),
		r.FetchTime,
		r.UserAgent,
		r.LighthouseVersion,
		r.GatherMode,
		floatOrEmpty(r.EffectiveBenchmarkIndex()),
		r.ConfigSettings.FormFactor,
		r.ConfigSettings.ThrottlingMethod,
		floatOrEmpty(r.ConfigSettings.ScreenEmulation.Width),
		floatOrEmpty(r.ConfigSettings.ScreenEmulation.Height),
		floatOrEmpty(r.ConfigSettings.ScreenEmulation.DeviceScaleFactor),
	}
	for i, name := range MetadataColumns {
		if err := row.Set(name, meta[i]); err != nil {
			return nil, err
		}
	}

	scores := categoryScores(r)
	for _, key := range sortedKeys(scores) {
		if err := row.Set(SummaryPrefix+key, scores[key]); err != nil {
			return nil, &ParseError{Path: r.RequestedURL, Message: "invalid summary value", Cause: err}
		}
	}
	for _, key := range sortedKeys(entry.Summary) {
		if row.Has(SummaryPrefix + key) {
			continue
		}
		if err := row.Set(SummaryPrefix+key, entry.Summary[key]); err != nil {
			return nil, &ParseError{Path: entry.Name(), Message: "invalid manifest summary value", Cause: err}
		}
	}

	for _, id := range sortedKeys(r.Audits) {
		value, ok := FlattenAudit(r.Audits[id])
		if !ok {
			continue
		}
		if err := row.Set(AuditPrefix+id, value); err != nil {
			return nil, err
		}
	}

	return row, nil
}

// FlattenAudit maps one audit to its row value. Binary audits become the boolean cast of
// their score (null is false); numeric audits become their numericValue. Any other display
// mode, or a numeric audit without a value, yields ok=false.
func FlattenAudit(a Audit) (any, bool) {
	switch a.ScoreDisplayMode {
	case DisplayModeBinary:
		return a.Score != nil && *a.Score != 0, true
	case DisplayModeNumeric:
		if a.NumericValue == nil {
			return nil, false
		}
		return *a.NumericValue, true
	default:
		return nil, false
	}
}

// Hostname returns the lower-cased hostname of the report's requestedUrl; it names the destination table.
func Hostname(r *Report) (string, error) {
	if r == nil || r.RequestedURL == "" {
		return "", fmt.Errorf("%w: requestedUrl", ErrMissingField)
	}
	u, err := url.Parse(r.RequestedURL)
	if err != nil {
		return "", &ParseError{Path: r.RequestedURL, Message: "invalid requestedUrl", Cause: err}
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", &ParseError{Path: r.RequestedURL, Message: "requestedUrl has no hostname"}
	}
	return host, nil
}

// categoryScores returns the report's summary, or the category scores when the summary is absent
func categoryScores(r *Report) map[string]any {
	if r.Summary != nil {
		return r.Summary
	}
	out := make(map[string]any, len(r.Categories))
	for id, c := range r.Categories {
		if c.Score == nil {
			out[id] = nil
			continue
		}
		out[id] = *c.Score
	}
	return out
}

func floatOrEmpty(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
