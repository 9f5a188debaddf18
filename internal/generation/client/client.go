package client

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

	"cvwizard-backend/internal/generation"
)

const defaultTimeout = 120 * time.Second

// Client implements generation.API over the backend's REST surface.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New constructs a Client for the given base URL. The token is optional;
// when set it is sent as a bearer credential.
func New(baseURL, token string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("GENERATION_SERVICE_URL is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: trimmed,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// GenerateCompetences asks the backend for core competence suggestions.
func (c *Client) GenerateCompetences(ctx context.Context, input generation.GenerateCompetencesInput) (generation.CompetencesResult, error) {
	var result generation.CompetencesResult
	err := c.do(ctx, http.MethodPost, "/api/cv/competences", input, &result)
	return result, err
}

// GenerateDocument starts an asynchronous CV generation job.
func (c *Client) GenerateDocument(ctx context.Context, input generation.GenerateDocumentInput) (generation.DocumentDTO, error) {
	var doc generation.DocumentDTO
	err := c.do(ctx, http.MethodPost, "/api/cv", input, &doc)
	return doc, err
}

// GetDocumentStatus fetches the current state of a document.
func (c *Client) GetDocumentStatus(ctx context.Context, documentID string) (generation.DocumentDTO, error) {
	var doc generation.DocumentDTO
	err := c.do(ctx, http.MethodGet, "/api/cv/"+url.PathEscape(documentID)+"/status", nil, &doc)
	return doc, err
}

// UpdateDocument applies a partial update to a document.
func (c *Client) UpdateDocument(ctx context.Context, documentID string, update generation.DocumentUpdate) (generation.DocumentDTO, error) {
	var doc generation.DocumentDTO
	err := c.do(ctx, http.MethodPut, "/api/cv/"+url.PathEscape(documentID), update, &doc)
	return doc, err
}

// DeleteDocument removes a document from the backend.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	return c.do(ctx, http.MethodDelete, "/api/cv/"+url.PathEscape(documentID), nil, nil)
}

// errorPayload is the backend's failure body; only the human-readable
// message is trusted, classification comes from the HTTP status.
type errorPayload struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &generation.TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &generation.TransportError{Err: err}
	}

	if resp.StatusCode >= 400 {
		return classifyStatus(resp.StatusCode, raw)
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("generation response parse: %w", err)
	}
	return nil
}

func classifyStatus(status int, raw []byte) error {
	var payload errorPayload
	_ = json.Unmarshal(raw, &payload)
	msg := strings.TrimSpace(payload.Message)

	switch {
	case status == http.StatusNotFound:
		if msg != "" {
			return fmt.Errorf("%w: %s", generation.ErrNotFound, msg)
		}
		return generation.ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return &generation.ValidationError{Message: msg}
	default:
		return &generation.ServerError{StatusCode: status, Message: msg}
	}
}

var _ generation.API = (*Client)(nil)
