package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendbook/internal/core"
	"spendbook/internal/store"
)

// Client persists the table in one worksheet of a Google spreadsheet. Load
// reads the full A:H range; Save clears the worksheet and rewrites header
// plus rows, matching the full-overwrite contract.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	defaultUser   string
}

var _ store.Store = (*Client)(nil)

// Config carries the spreadsheet coordinates and credential sources.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
	DefaultUser        string
}

// New creates a Sheets-backed store and makes sure the worksheet exists with
// the schema header.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	c := &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		defaultUser:   cfg.DefaultUser,
	}
	if err := c.ensureWorksheet(ctx); err != nil {
		return nil, fmt.Errorf("ensure worksheet %s: %w", sheetName, err)
	}
	return c, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from the config or, failing that, the standard
// GOOGLE_APPLICATION_CREDENTIALS variable.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ensureWorksheet creates the worksheet with the schema header when the
// spreadsheet does not have it yet.
func (c *Client) ensureWorksheet(ctx context.Context) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sheet := range ss.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == c.sheetName {
			return nil
		}
	}

	slog.InfoContext(ctx, "Worksheet missing, creating it", "sheet", c.sheetName)
	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: c.sheetName},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := &gsheet.ValueRange{Values: [][]any{headerValues()}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.headerRange(), header).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// Load reads the worksheet's A:H range and parses every data row. Rows that
// fail to parse are skipped with a warning; load never fails on content.
func (c *Client) Load(ctx context.Context) (core.Table, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:H", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	table := make(core.Table, 0, len(resp.Values))
	for i, row := range resp.Values {
		cols := toStrings(row)
		if i == 0 && core.IsHeaderRow(cols) {
			continue
		}
		rec, err := core.RecordFromRow(cols, c.defaultUser)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed sheet row", "sheet", c.sheetName, "row", i+1, "error", err)
			continue
		}
		table = append(table, rec)
	}
	return table, nil
}

// Save clears the worksheet and rewrites it from scratch, header included.
func (c *Client) Save(ctx context.Context, t core.Table) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:H", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	values := make([][]any, 0, len(t)+1)
	values = append(values, headerValues())
	for _, rec := range t {
		row := rec.Row()
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		values = append(values, cells)
	}

	writeRange := fmt.Sprintf("%s!A1", c.sheetName)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", writeRange, err)
	}

	slog.InfoContext(ctx, "Table saved to Google Sheets", "sheet", c.sheetName, "rows", len(t))
	return nil
}

func (c *Client) headerRange() string {
	return fmt.Sprintf("%s!A1:H1", c.sheetName)
}

func headerValues() []any {
	header := core.Header()
	out := make([]any, len(header))
	for i, h := range header {
		out[i] = h
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
