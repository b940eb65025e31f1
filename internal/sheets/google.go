package sheets

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Credentials identifies the spreadsheet and the service account allowed to edit it
type Credentials struct {
	SpreadsheetID       string
	ServiceAccountEmail string
	PrivateKey          string
}

// GoogleStore is a Store backed by one Google Sheets spreadsheet; each worksheet is a Table
// and row 1 is its header.
type GoogleStore struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewGoogleStore authenticates as the service account and opens the spreadsheet.
// Extra client options are appended after the authenticated HTTP client.
func NewGoogleStore(ctx context.Context, creds Credentials, opts ...option.ClientOption) (*GoogleStore, error) {
	conf := &jwt.Config{
		Email:      creds.ServiceAccountEmail,
		PrivateKey: []byte(creds.PrivateKey),
		Scopes:     []string{sheetsapi.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	clientOpts := append([]option.ClientOption{option.WithHTTPClient(conf.Client(ctx))}, opts...)
	svc, err := sheetsapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return NewGoogleStoreWithService(svc, creds.SpreadsheetID), nil
}

// NewGoogleStoreWithService wraps an existing Sheets service
func NewGoogleStoreWithService(svc *sheetsapi.Service, spreadsheetID string) *GoogleStore {
	return &GoogleStore{svc: svc, spreadsheetID: spreadsheetID}
}

// Title returns the spreadsheet's title
func (g *GoogleStore) Title(ctx context.Context) (string, error) {
	ss, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Fields("properties.title").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to load spreadsheet %s: %w", g.spreadsheetID, err)
	}
	if ss.Properties == nil {
		return "", nil
	}
	return ss.Properties.Title, nil
}

// ListTables implements Store
func (g *GoogleStore) ListTables(ctx context.Context) ([]Table, error) {
	ss, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list worksheets: %w", err)
	}

	tables := make([]Table, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		tables = append(tables, tableFromProperties(sh.Properties))
	}
	return tables, nil
}

// CreateTable implements Store
func (g *GoogleStore) CreateTable(ctx context.Context, name string, header []string) (Table, error) {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: name},
			},
		}},
	}

	resp, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return Table{}, fmt.Errorf("failed to add worksheet %s: %w", name, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return Table{}, fmt.Errorf("failed to add worksheet %s: empty reply", name)
	}

	t := tableFromProperties(resp.Replies[0].AddSheet.Properties)
	if len(header) > 0 {
		if err := g.WriteHeader(ctx, t, header); err != nil {
			return Table{}, err
		}
	}
	return t, nil
}

// ReadHeader implements Store
func (g *GoogleStore) ReadHeader(ctx context.Context, t Table) ([]string, error) {
	vr, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, HeaderRange(t.Name)).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", t.Name, err)
	}
	if len(vr.Values) == 0 {
		return []string{}, nil
	}

	header := make([]string, len(vr.Values[0]))
	for i, cell := range vr.Values[0] {
		header[i] = fmt.Sprint(cell)
	}
	return header, nil
}

// WriteHeader implements Store
func (g *GoogleStore) WriteHeader(ctx context.Context, t Table, header []string) error {
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}

	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, AnchorRange(t.Name), &sheetsapi.ValueRange{
		MajorDimension: "ROWS",
		Values:         [][]any{cells},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write header of %s: %w", t.Name, err)
	}
	return nil
}

// ResizeColumns implements Store
func (g *GoogleStore) ResizeColumns(ctx context.Context, t Table, columns int) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			UpdateSheetProperties: &sheetsapi.UpdateSheetPropertiesRequest{
				Properties: &sheetsapi.SheetProperties{
					SheetId:         t.ID,
					GridProperties:  &sheetsapi.GridProperties{ColumnCount: int64(columns)},
					ForceSendFields: []string{"SheetId"},
				},
				Fields: "gridProperties.columnCount",
			},
		}},
	}

	if _, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to resize %s to %d columns: %w", t.Name, columns, err)
	}
	return nil
}

// AppendRow implements Store
func (g *GoogleStore) AppendRow(ctx context.Context, t Table, values []any) error {
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, AnchorRange(t.Name), &sheetsapi.ValueRange{
		MajorDimension: "ROWS",
		Values:         [][]any{values},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", t.Name, err)
	}
	return nil
}

func tableFromProperties(p *sheetsapi.SheetProperties) Table {
	t := Table{ID: p.SheetId, Name: p.Title}
	if p.GridProperties != nil {
		t.ColumnCount = int(p.GridProperties.ColumnCount)
	}
	return t
}

// QuoteTitle quotes a worksheet title for A1 notation
func QuoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// HeaderRange is the A1 range of a worksheet's first row
func HeaderRange(title string) string {
	return QuoteTitle(title) + "!1:1"
}

// AnchorRange is the A1 cell of a worksheet
func AnchorRange(title string) string {
	return QuoteTitle(title) + "!A1"
}
