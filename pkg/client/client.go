// Package client is an HTTP client for the portfolio contact API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Contact is a stored submission as the API returns it.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SubmitResponse is the 201 answer to a submission.
type SubmitResponse struct {
	Message string  `json:"message"`
	Data    Contact `json:"data"`
}

// ListResponse is the 200 answer to a listing, newest first.
type ListResponse struct {
	Count int       `json:"count"`
	Data  []Contact `json:"data"`
}

// APIError is returned for every non-2xx answer.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("portfolio api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("portfolio api: status %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Client talks to one API base URL. Each method issues exactly one request
// and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. A nil httpClient gets a 30s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SubmitContact posts a contact form submission.
func (c *Client) SubmitContact(ctx context.Context, in ContactRequest) (*SubmitResponse, error) {
	jsonBody, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/contact", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out SubmitResponse
	if err := c.do(req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListContacts fetches every stored submission with a bearer token.
func (c *Client) ListContacts(ctx context.Context, token string) (*ListResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/contact", nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var out ListResponse
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []Contact{}
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, want int, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("portfolio api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var errResp struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		apiErr.Message = errResp.Message
	}
	return apiErr
}
