package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/yudhap/policyrag/helper"
	"github.com/yudhap/policyrag/model"
)

// Conservative default, well below the Sheets API read quota.
const (
	defaultRequestsPerSecond = 1.0
	defaultBurstSize         = 3
)

// Client reads structured records from one Google Sheets spreadsheet.
// All requests pass through a token-bucket rate limiter.
type Client struct {
	service       *sheets.Service
	spreadsheetID string
	limiter       *rate.Limiter
	log           *slog.Logger
}

// NewClient creates a Sheets client authenticated with a service account
// credentials file.
func NewClient(ctx context.Context, credentialsFile, spreadsheetID string, logger *slog.Logger) (*Client, error) {
	if spreadsheetID == "" {
		return nil, helper.NewError("create sheets client", fmt.Errorf("spreadsheet ID is empty"))
	}

	service, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, helper.NewError("create sheets service", err)
	}

	return &Client{
		service:       service,
		spreadsheetID: spreadsheetID,
		limiter:       rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultBurstSize),
		log:           logger,
	}, nil
}

// QuerySheet returns all rows of the named worksheet as field maps.
// The first row is treated as the header.
func (c *Client) QuerySheet(ctx context.Context, table string) ([]model.StructuredRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, table).Context(ctx).Do()
	if err != nil {
		return nil, helper.NewError(fmt.Sprintf("read sheet %q", table), err)
	}

	records := RecordsFromValues(resp.Values)
	c.log.Info("Fetched sheet records", slog.String("table", table), slog.Int("count", len(records)))
	return records, nil
}

// AppendFeedback appends one feedback row to the named worksheet. Used by the
// chat layer to persist user feedback next to the record data.
func (c *Client) AppendFeedback(ctx context.Context, table string, values []string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	valueRange := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := c.service.Spreadsheets.Values.
		Append(c.spreadsheetID, table, valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return helper.NewError(fmt.Sprintf("append feedback to %q", table), err)
	}

	c.log.Info("Appended feedback row", slog.String("table", table))
	return nil
}

// RecordsFromValues converts a raw value grid into records using the first
// row as the header. Short rows are padded with empty fields, extra cells
// beyond the header are dropped.
func RecordsFromValues(values [][]interface{}) []model.StructuredRecord {
	if len(values) < 2 {
		return nil
	}

	header := make([]string, len(values[0]))
	for i, cell := range values[0] {
		header[i] = strings.TrimSpace(fmt.Sprint(cell))
	}

	records := make([]model.StructuredRecord, 0, len(values)-1)
	for _, row := range values[1:] {
		record := make(model.StructuredRecord, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(row) {
				record[name] = strings.TrimSpace(fmt.Sprint(row[i]))
			} else {
				record[name] = ""
			}
		}
		records = append(records, record)
	}
	return records
}
