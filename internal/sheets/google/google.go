// Package google writes ledger exports to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	ports "receber/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.RowWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (default "Recebimentos"),
// GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE for credentials
// (falls back to application default credentials).
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Recebimentos"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}

	switch {
	case strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")) != "":
		opts = append(opts, goption.WithCredentialsJSON(
			[]byte(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))))
	case strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")) != "":
		opts = append(opts, goption.WithCredentialsFile(
			strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))))
	}
	// Without explicit credentials the client library falls back to
	// application default credentials.

	return gsheet.NewService(ctx, opts...)
}

// ReplaceRows clears the export sheet and writes the given rows starting at
// A1, values taken literally.
func (c *Client) ReplaceRows(ctx context.Context, rows [][]any) error {
	rangeRef := fmt.Sprintf("'%s'", c.sheetName)

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rangeRef,
		&gsheet.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = row
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID,
		fmt.Sprintf("'%s'!A1", c.sheetName),
		&gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet %s: %w", c.sheetName, err)
	}

	return nil
}
