// Package gsheet appends month budget summaries to a Google spreadsheet.
// The export is optional and fire-and-forget: the worker logs failures and
// keeps running.
package gsheet

import (
	"context"
	"errors"
	"fmt"
	"os"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// New builds a Sheets client from service account credentials. Inline JSON
// takes precedence over the credentials file.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Client, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	var credentialsJSON []byte
	switch {
	case cfg.GoogleServiceAccountJSON != "":
		credentialsJSON = []byte(cfg.GoogleServiceAccountJSON)
	case cfg.GoogleServiceAccountFile != "":
		data, err := os.ReadFile(cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
		logger:        logger.WithComponent(log.ComponentExport),
	}, nil
}

// AppendMonthSummary writes one row per budget line after the sheet's last
// used row: month, category, spent, budgeted, overrun.
func (c *Client) AppendMonthSummary(ctx context.Context, month core.Date, lines []core.BudgetLine) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if len(lines) == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	values := make([][]any, 0, len(lines))
	for _, l := range lines {
		over := float64(0)
		if overrun, ok := l.Overrun(); ok {
			over = overrun.Dollars()
		}
		values = append(values, []any{
			month.String(),
			string(l.Category),
			l.Spent.Dollars(),
			l.Budgeted.Dollars(),
			over,
		})
	}

	dataRange := fmt.Sprintf("%s!A%d:E%d", c.sheetName, nextRow, nextRow+len(values)-1)
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", dataRange, err)
	}

	c.logger.InfoContext(ctx, "Month summary exported",
		log.FieldMonth, month.String(),
		"rows", len(values))
	return nil
}
