// Package extraction turns uploaded PDF statements into structured,
// enriched transaction tables via an asynchronous document-to-markdown
// service and LLM completions.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultMaxPolls     = 20
)

// MarkdownClient is an HTTP client for the asynchronous document-extraction
// service: submit bytes, poll for completion, receive markdown text or a
// terminal failure.
type MarkdownClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	pollInterval time.Duration
	maxPolls     int
}

// NewMarkdownClient creates a client for the extraction service.
func NewMarkdownClient(baseURL, apiKey string) *MarkdownClient {
	return &MarkdownClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // submissions carry whole PDFs
		},
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
	}
}

type submitResponse struct {
	RecordID string `json:"record_id"`
}

type jobStatusResponse struct {
	ProcessingStatus string `json:"processing_status"`
	Status           string `json:"status"`
	Content          string `json:"content"`
}

func (r *jobStatusResponse) state() string {
	if r.ProcessingStatus != "" {
		return r.ProcessingStatus
	}
	return r.Status
}

// ExtractMarkdown submits the PDF bytes and blocks until the remote job
// completes, fails, or the bounded polling loop is exhausted.
func (c *MarkdownClient) ExtractMarkdown(ctx context.Context, data []byte, filename string) (string, error) {
	recordID, err := c.submit(ctx, data, filename)
	if err != nil {
		return "", err
	}

	for i := 0; i < c.maxPolls; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}

		status, err := c.poll(ctx, recordID)
		if err != nil {
			return "", err
		}
		switch status.state() {
		case "completed":
			if strings.TrimSpace(status.Content) == "" {
				return "", &Error{Code: ErrEmptyContent, Message: "extraction completed but content is empty"}
			}
			return status.Content, nil
		case "failed":
			return "", &Error{Code: ErrJobFailed, Message: "document extraction failed"}
		}
	}
	return "", &Error{Code: ErrJobTimeout, Message: fmt.Sprintf("extraction not complete after %d polls", c.maxPolls)}
}

func (c *MarkdownClient) submit(ctx context.Context, data []byte, filename string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write file data: %w", err)
	}
	if err := writer.WriteField("output_type", "markdown"); err != nil {
		return "", fmt.Errorf("write output_type field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Code: ErrServiceUnavailable, Message: "submit extraction job", Retryable: true, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &Error{
			Code:      ErrServiceUnavailable,
			Message:   fmt.Sprintf("extraction service returned %d: %s", resp.StatusCode, body),
			Retryable: resp.StatusCode >= 500,
		}
	}

	var submitted submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if submitted.RecordID == "" {
		return "", &Error{Code: ErrJobFailed, Message: "no record_id returned by extraction service"}
	}
	return submitted.RecordID, nil
}

func (c *MarkdownClient) poll(ctx context.Context, recordID string) (*jobStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files/"+recordID, nil)
	if err != nil {
		return nil, fmt.Errorf("create poll request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Code: ErrServiceUnavailable, Message: "poll extraction job", Retryable: true, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &Error{
			Code:      ErrServiceUnavailable,
			Message:   fmt.Sprintf("status poll returned %d: %s", resp.StatusCode, body),
			Retryable: resp.StatusCode >= 500,
		}
	}

	var status jobStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode poll response: %w", err)
	}
	return &status, nil
}
