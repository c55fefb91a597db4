// Package endpoint talks to the external processing webhook that answers chat turns.
package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"deckchat/internal/config"
	"deckchat/internal/logging"
)

var (
	// ErrNotConfigured is returned without any network attempt when no URL is set.
	ErrNotConfigured = errors.New("endpoint url is not configured")
	// ErrNotJSON means a 2xx response whose content type is not JSON.
	ErrNotJSON = errors.New("endpoint returned a non-JSON response")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("endpoint status %d: %s", e.Code, e.Body)
}

// Request is one user turn forwarded to the endpoint.
type Request struct {
	Message    string
	SessionID  string
	Attachment *Attachment
}

// ResultKind classifies a successful response.
type ResultKind int

const (
	// ResultUnrecognized is a JSON body with neither data_result nor message.
	ResultUnrecognized ResultKind = iota
	// ResultText carries a plain message.
	ResultText
	// ResultDocument carries a structured payload to be formatted.
	ResultDocument
)

func (k ResultKind) String() string {
	switch k {
	case ResultText:
		return "text"
	case ResultDocument:
		return "document"
	default:
		return "unrecognized"
	}
}

// Result is a classified 2xx JSON response. For documents Raw holds the payload as
// text: strings verbatim, everything else as two-space indented JSON.
type Result struct {
	Kind ResultKind
	Text string
	Raw  string
}

// Client posts turns to the webhook.
type Client struct {
	url        string
	httpClient *http.Client
}

func New(cfg config.EndpointConfig) *Client {
	httpClient := &http.Client{}
	if cfg.TimeoutMS > 0 {
		httpClient.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &Client{
		url:        strings.TrimSpace(cfg.URL),
		httpClient: httpClient,
	}
}

// Configured reports whether a webhook URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.url != ""
}

// Dispatch sends req and classifies the response. Transport failures, non-2xx statuses
// and non-JSON bodies come back as errors; callers turn them into apologies.
func (c *Client) Dispatch(ctx context.Context, req Request) (Result, error) {
	if !c.Configured() {
		return Result{}, ErrNotConfigured
	}

	body, contentType, err := encodeRequest(req)
	if err != nil {
		return Result{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return Result{}, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}
	logging.Debug().
		Str("session", req.SessionID).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("endpoint responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &StatusError{Code: resp.StatusCode, Body: truncate(strings.TrimSpace(string(data)), 2048)}
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		logging.Warn().Int("status", resp.StatusCode).Str("body", truncate(string(data), 512)).Msg("endpoint returned non-JSON")
		return Result{}, ErrNotJSON
	}
	return classify(data)
}

func encodeRequest(req Request) (io.Reader, string, error) {
	if req.Attachment == nil {
		payload, err := json.Marshal(map[string]string{
			"message":   req.Message,
			"sessionId": req.SessionID,
		})
		if err != nil {
			return nil, "", fmt.Errorf("marshal request: %w", err)
		}
		return bytes.NewReader(payload), "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"message", req.Message},
		{"sessionId", req.SessionID},
		{"fileType", req.Attachment.Extension()},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	part, err := w.CreateFormFile("file", filepath.Base(req.Attachment.Name))
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(req.Attachment.Data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// classify routes a JSON body by shape. A data_result counts only when truthy, the same
// for message, so an empty data_result falls through to message.
func classify(data []byte) (Result, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		// JSON content type but not an object: received, not understood.
		if json.Valid(data) {
			return Result{Kind: ResultUnrecognized}, nil
		}
		return Result{}, fmt.Errorf("decode response: %w", err)
	}

	if raw, ok := body["data_result"]; ok {
		if text, ok := documentText(raw); ok {
			return Result{Kind: ResultDocument, Raw: text}, nil
		}
	}
	if raw, ok := body["message"]; ok {
		if text, ok := truthyText(raw); ok {
			return Result{Kind: ResultText, Text: text}, nil
		}
	}
	return Result{Kind: ResultUnrecognized}, nil
}

// documentText returns a string data_result as-is and re-indents an object or array with
// two spaces, keeping the key order of the response.
func documentText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return truthyText(raw)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, trimmed, "", "  "); err != nil {
		return "", false
	}
	return out.String(), true
}

func truthyText(raw json.RawMessage) (string, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case bool:
		return strconv.FormatBool(x), x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), x != 0
	default:
		out, err := json.Marshal(x)
		if err != nil {
			return "", false
		}
		return string(out), true
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
