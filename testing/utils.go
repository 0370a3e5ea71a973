package e2etesting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type RequestOptions struct {
	Method  string
	Path    string
	Body    any
	Headers map[string]string
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) GetJSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

func (r *Response) GetString() string {
	return string(r.Body)
}

func (r *Response) AssertStatus(t *testing.T, expectedStatus int) {
	t.Helper()
	require.Equal(t, expectedStatus, r.StatusCode, "unexpected status code. Response: %s", r.GetString())
}

// AssertError checks the status and the {"error": ...} body of a failed call.
func (r *Response) AssertError(t *testing.T, expectedStatus int, expectedMessage string) {
	t.Helper()
	r.AssertStatus(t, expectedStatus)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, r.GetJSON(&body), "error response is not JSON: %s", r.GetString())
	require.Equal(t, expectedMessage, body.Error)
}

// WithToken returns a copy of the client that sends token as a bearer
// credential.
func (c *HTTPClient) WithToken(token string) *HTTPClient {
	return &HTTPClient{Client: c.Client, BaseURL: c.BaseURL, token: token}
}

func (c *HTTPClient) Get(path string) (*Response, error) {
	return c.Request(&RequestOptions{Method: http.MethodGet, Path: path})
}

func (c *HTTPClient) Post(path string, body any) (*Response, error) {
	return c.Request(&RequestOptions{Method: http.MethodPost, Path: path, Body: body})
}

func (c *HTTPClient) Put(path string, body any) (*Response, error) {
	return c.Request(&RequestOptions{Method: http.MethodPut, Path: path, Body: body})
}

func (c *HTTPClient) Delete(path string) (*Response, error) {
	return c.Request(&RequestOptions{Method: http.MethodDelete, Path: path})
}

func (c *HTTPClient) Request(opts *RequestOptions) (*Response, error) {
	var bodyReader io.Reader
	if opts.Body != nil {
		jsonBody, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(opts.Method, c.BaseURL+opts.Path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{Response: resp, Body: body}, nil
}
