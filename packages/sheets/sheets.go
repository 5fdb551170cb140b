package sheets

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Client appends onboarding result rows to per-guild tabs of one master
// spreadsheet. The header row is guild-specific (one column per active
// question), so it is (re)established the first time each tab is
// written to in a process lifetime.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetId string

	mu      sync.Mutex
	ensured map[string]bool
}

func New(ctx context.Context, credentialsJSON []byte, spreadsheetId string) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("could not initialize sheets client: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetId: spreadsheetId,
		ensured:       make(map[string]bool),
	}, nil
}

// AppendRow writes one result row to the named tab, creating the tab
// and its header row first when needed.
func (c *Client) AppendRow(tabName string, headers, row []string) error {
	if err := c.ensureTabAndHeader(tabName, headers); err != nil {
		return err
	}

	values := &sheetsapi.ValueRange{Values: [][]interface{}{toInterfaces(row)}}

	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetId, tabRange(tabName, "A:Z"), values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Do()
	if err != nil {
		return fmt.Errorf("could not append row to %q: %w", tabName, err)
	}

	return nil
}

func (c *Client) ensureTabAndHeader(tabName string, headers []string) error {
	c.mu.Lock()
	already := c.ensured[tabName]
	c.mu.Unlock()

	if already {
		return nil
	}

	spreadsheet, err := c.svc.Spreadsheets.Get(c.spreadsheetId).Do()
	if err != nil {
		return fmt.Errorf("could not access spreadsheet %v: %w", c.spreadsheetId, err)
	}

	found := false
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == tabName {
			found = true
			break
		}
	}

	if !found {
		log.Printf("Creating new sheet tab: %v", tabName)

		request := &sheetsapi.BatchUpdateSpreadsheetRequest{
			Requests: []*sheetsapi.Request{{
				AddSheet: &sheetsapi.AddSheetRequest{
					Properties: &sheetsapi.SheetProperties{Title: tabName},
				},
			}},
		}

		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetId, request).Do(); err != nil {
			return fmt.Errorf("could not create tab %q: %w", tabName, err)
		}
	}

	if err := c.writeHeader(tabName, headers); err != nil {
		return err
	}

	c.mu.Lock()
	c.ensured[tabName] = true
	c.mu.Unlock()

	return nil
}

// writeHeader rewrites row 1 so the columns always match the guild's
// current active-question catalog.
func (c *Client) writeHeader(tabName string, headers []string) error {
	values := &sheetsapi.ValueRange{Values: [][]interface{}{toInterfaces(headers)}}

	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetId, tabRange(tabName, "A1"), values).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return fmt.Errorf("could not write header for %q: %w", tabName, err)
	}

	return nil
}

func tabRange(tabName, a1Range string) string {
	safe := strings.ReplaceAll(tabName, "'", "''")
	return fmt.Sprintf("'%s'!%s", safe, a1Range)
}

func toInterfaces(row []string) []interface{} {
	values := make([]interface{}, len(row))
	for i, cell := range row {
		values[i] = cell
	}
	return values
}
