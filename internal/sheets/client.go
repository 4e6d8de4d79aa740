package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Client implements Store against a Sheets-style values REST API:
// GET  {base}/spreadsheets/{id}/values/{range}
// PUT  {base}/spreadsheets/{id}/values/{range}
// POST {base}/spreadsheets/{id}/values/{range}:append
type Client struct {
	baseURL    string
	sheetID    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a spreadsheet store client for one spreadsheet.
func NewClient(baseURL, sheetID, token string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		sheetID: sheetID,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With().Str("component", "sheets").Logger(),
	}
}

// valueRange mirrors the values API body.
type valueRange struct {
	Values [][]string `json:"values"`
}

func (c *Client) valuesURL(rangeRef string, op string) string {
	return c.baseURL + "/spreadsheets/" + c.sheetID + "/values/" +
		url.PathEscape(rangeRef) + op + "?valueInputOption=RAW"
}

func (c *Client) do(ctx context.Context, method, u string, body interface{}) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s returned status %d", method, u, resp.StatusCode)
	}
	return resp, nil
}

// ReadRange fetches the full used range of a tab.
func (c *Client) ReadRange(ctx context.Context, tab string) ([][]string, error) {
	u := c.baseURL + "/spreadsheets/" + c.sheetID + "/values/" + url.PathEscape(tab)
	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var vr valueRange
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("decode range %s: %w", tab, err)
	}
	return vr.Values, nil
}

// UpdateCell patches one cell addressed by column letter and 1-based
// row number, leaving every other cell untouched.
func (c *Client) UpdateCell(ctx context.Context, tab, column string, row int, value string) error {
	cellRef := tab + "!" + column + strconv.Itoa(row)
	u := c.valuesURL(cellRef, "")
	resp, err := c.do(ctx, http.MethodPut, u, valueRange{Values: [][]string{{value}}})
	if err != nil {
		return err
	}
	resp.Body.Close()

	c.logger.Debug().Str("cell", cellRef).Msg("cell updated")
	return nil
}

// AppendRows appends rows after the last row of the tab's table.
func (c *Client) AppendRows(ctx context.Context, tab string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	u := c.valuesURL(tab+"!A1", ":append")
	resp, err := c.do(ctx, http.MethodPost, u, valueRange{Values: rows})
	if err != nil {
		return err
	}
	resp.Body.Close()

	c.logger.Debug().Str("tab", tab).Int("rows", len(rows)).Msg("rows appended")
	return nil
}
