package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/audit-sheets/internal/manifest"
	"github.com/jonathan/audit-sheets/internal/schemas"
)

// htmlJSONMarker introduces the result document inlined in a Lighthouse HTML report
const htmlJSONMarker = "window.__LIGHTHOUSE_JSON__ ="

// Load reads the report an entry points at. The JSON report is preferred; when only
// an HTML report is listed, the result document inlined in it is used.
func Load(entry manifest.Entry) (*Report, error) {
	if entry.JSONPath != "" {
		data, err := os.ReadFile(entry.JSONPath)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrReadReport, entry.JSONPath, err)
		}
		return Parse(entry.JSONPath, data)
	}

	if entry.HTMLPath == "" {
		return nil, fmt.Errorf("%w: entry has neither jsonPath nor htmlPath", ErrMissingField)
	}

	data, err := os.ReadFile(entry.HTMLPath)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrReadReport, entry.HTMLPath, err)
	}
	doc, err := ExtractJSONFromHTML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entry.HTMLPath, err)
	}
	return Parse(entry.HTMLPath, doc)
}

// Parse validates raw report JSON against the audit report schema and decodes it.
// path is only used to label errors.
func Parse(path string, data []byte) (*Report, error) {
	if err := schemas.ValidateReport(data); err != nil {
		return nil, &ParseError{Path: path, Message: "report does not match schema", Cause: err}
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &ParseError{Path: path, Message: "failed to decode report", Cause: err}
	}

	if r.RequestedURL == "" {
		return nil, fmt.Errorf("%w: requestedUrl in %s", ErrMissingField, path)
	}
	if r.Audits == nil {
		return nil, fmt.Errorf("%w: audits in %s", ErrMissingField, path)
	}
	if r.Summary == nil && r.Categories == nil {
		return nil, fmt.Errorf("%w: summary in %s", ErrMissingField, path)
	}

	return &r, nil
}

// ExtractJSONFromHTML returns the result document inlined in a Lighthouse HTML report
func ExtractJSONFromHTML(html []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &ParseError{Path: "(html)", Message: "failed to parse HTML", Cause: err}
	}

	var found []byte
	var decodeErr error
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, htmlJSONMarker)
		if idx < 0 {
			return true
		}

		var raw json.RawMessage
		dec := json.NewDecoder(strings.NewReader(text[idx+len(htmlJSONMarker):]))
		if err := dec.Decode(&raw); err != nil {
			decodeErr = err
			return false
		}
		found = raw
		return false
	})

	if decodeErr != nil {
		return nil, &ParseError{Path: "(html)", Message: "embedded report JSON is malformed", Cause: decodeErr}
	}
	if found == nil {
		return nil, ErrNoEmbeddedJSON
	}
	return found, nil
}
