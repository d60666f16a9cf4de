package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	AirtableAPIURL = "https://api.airtable.com/v0"
	timeout        = 15 * time.Second

	// maxErrorBody bounds how much of a rejection body ends up in logs.
	maxErrorBody = 512
)

// AirtableClient appends rows to one Airtable table
type AirtableClient struct {
	apiKey     string
	baseID     string
	table      string
	apiURL     string
	httpClient *http.Client
}

// Option configures an AirtableClient
type Option func(*AirtableClient)

// WithAPIURL points the client at another API root, such as a test server.
func WithAPIURL(apiURL string) Option {
	return func(c *AirtableClient) {
		if apiURL != "" {
			c.apiURL = strings.TrimRight(apiURL, "/")
		}
	}
}

// WithHTTPClient replaces the default client with its 15s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *AirtableClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewAirtableClient creates a new Airtable client
func NewAirtableClient(apiKey, baseID, table string, opts ...Option) (*AirtableClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("airtable API key is required")
	}
	if baseID == "" {
		return nil, fmt.Errorf("airtable base ID is required")
	}
	if table == "" {
		return nil, fmt.Errorf("airtable table name is required")
	}

	c := &AirtableClient{
		apiKey: apiKey,
		baseID: baseID,
		table:  table,
		apiURL: AirtableAPIURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *AirtableClient) endpoint() string {
	return fmt.Sprintf("%s/%s/%s", c.apiURL, url.PathEscape(c.baseID), url.PathEscape(c.table))
}

// Upload creates one row holding fields. Only 200 and 201 count as stored.
func (c *AirtableClient) Upload(ctx context.Context, fields map[string]string) error {
	payload := map[string]interface{}{
		"fields": fields,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &RejectedError{
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	return nil
}
