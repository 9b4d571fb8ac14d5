package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultAPIBase = "https://api.telegram.org"

// Client is a minimal Telegram Bot API client. It holds the bot credential
// and performs the two calls the relay needs; the update offset is owned by
// the caller, not the client.
type Client struct {
	apiBase    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the given bot token. Requests carry no
// client-level timeout; callers bound each call with a context deadline,
// which also covers long-poll getUpdates calls.
func NewClient(token string) *Client {
	return &Client{
		apiBase:    defaultAPIBase,
		token:      token,
		httpClient: &http.Client{},
	}
}

// APIError is a rejection by the Bot API: a non-2xx HTTP status, an ok=false
// response body, or a malformed success response.
type APIError struct {
	Method      string
	StatusCode  int
	Code        int
	Description string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("telegram %s: http status %d: %s", e.Method, e.StatusCode, e.Description)
	}
	return fmt.Sprintf("telegram %s: api error %d: %s", e.Method, e.Code, e.Description)
}

// TransportError is a network-level failure reaching the Bot API. Reason has
// the bot token redacted: Go HTTP errors embed the full request URL, and for
// Telegram the URL contains the token.
type TransportError struct {
	Method string
	Reason string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("telegram %s: %s", e.Method, e.Reason)
}

func redactToken(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, "<redacted>")
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

func (c *Client) postJSON(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", method, err)
	}

	url := c.apiBase + "/bot" + c.token + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Method: method, Reason: redactToken(err.Error(), c.token)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Method: method, Reason: redactToken(err.Error(), c.token)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, Reason: redactToken(err.Error(), c.token)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:      method,
			StatusCode:  resp.StatusCode,
			Description: strings.TrimSpace(string(raw)),
		}
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parse %s response: %w", method, err)
	}
	if !parsed.OK {
		desc := parsed.Description
		if desc == "" {
			desc = "unknown telegram error"
		}
		return &APIError{Method: method, Code: parsed.ErrorCode, Description: desc}
	}

	if out != nil {
		if len(parsed.Result) == 0 {
			return &APIError{Method: method, Description: "missing result despite ok=true"}
		}
		if err := json.Unmarshal(parsed.Result, out); err != nil {
			return fmt.Errorf("parse %s result: %w", method, err)
		}
	}
	return nil
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// SendMessage sends a text message to the given chat and returns the new
// message id.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	var result struct {
		MessageID int64 `json:"message_id"`
	}
	req := sendMessageRequest{ChatID: chatID, Text: text}
	if err := c.postJSON(ctx, "sendMessage", req, &result); err != nil {
		return 0, err
	}
	return result.MessageID, nil
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates"`
}

// GetUpdates fetches updates with update_id >= offset, ordered by increasing
// update_id. timeoutSeconds is the server-side long-poll hint; 0 means return
// immediately. An empty slice is a normal result.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error) {
	var updates []Update
	req := getUpdatesRequest{
		Offset:         offset,
		Timeout:        timeoutSeconds,
		AllowedUpdates: []string{"message"},
	}
	if err := c.postJSON(ctx, "getUpdates", req, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
