// Package onebot is a minimal client for the OneBot v11 HTTP API exposed by
// NapCat-style protocol bridges. Outbound calls cover group messages and
// member-role lookups; inbound pushes are decoded into Event by the webhook.
package onebot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"
)

// Role is a member's standing in a group, as reported by the bridge.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleMember  Role = "member"
	RoleUnknown Role = "unknown"
)

// IsElevated reports whether the role may use admin-gated commands.
func (r Role) IsElevated() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Segment is one element of a OneBot message array.
type Segment struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Text builds a text segment.
func Text(text string) Segment {
	return Segment{Type: "text", Data: map[string]any{"text": text}}
}

// Image builds an image segment from a local file path.
func Image(path string) Segment {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Segment{Type: "image", Data: map[string]any{"file": "file://" + abs}}
}

// Client calls the bridge's HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *slog.Logger
}

// NewClient creates a bridge client. token may be empty when the bridge has
// no access token configured.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
		logger:     logger,
	}
}

// apiResponse is the bridge's response envelope.
type apiResponse struct {
	Status  string          `json:"status"`
	Retcode int             `json:"retcode"`
	Data    json.RawMessage `json:"data"`
}

// call POSTs a JSON payload to one API action and decodes the envelope.
func (c *Client) call(ctx context.Context, action string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+action, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s: %w", action, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("onebot %s returned %d", action, resp.StatusCode)
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.Status == "failed" {
		return fmt.Errorf("onebot %s failed: retcode %d", action, envelope.Retcode)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode %s data: %w", action, err)
		}
	}
	return nil
}

// SendGroupMessage sends a message array to a group.
func (c *Client) SendGroupMessage(ctx context.Context, groupID int64, segments []Segment) error {
	return c.call(ctx, "send_group_msg", map[string]any{
		"group_id": groupID,
		"message":  segments,
	}, nil)
}

// SendGroupText sends a plain text group message.
func (c *Client) SendGroupText(ctx context.Context, groupID int64, text string) error {
	return c.SendGroupMessage(ctx, groupID, []Segment{Text(text)})
}

// SendGroupImage sends a local image file to a group.
func (c *Client) SendGroupImage(ctx context.Context, groupID int64, path string) error {
	return c.SendGroupMessage(ctx, groupID, []Segment{Image(path)})
}

// MemberRole looks up a member's role in a group. On any failure it returns
// RoleUnknown with the error; callers gate on the role and fail closed.
func (c *Client) MemberRole(ctx context.Context, groupID, userID int64) (Role, error) {
	var data struct {
		Role string `json:"role"`
	}
	err := c.call(ctx, "get_group_member_info", map[string]any{
		"group_id": groupID,
		"user_id":  userID,
		"no_cache": true,
	}, &data)
	if err != nil {
		return RoleUnknown, err
	}

	switch Role(data.Role) {
	case RoleOwner, RoleAdmin, RoleMember:
		return Role(data.Role), nil
	}
	return RoleUnknown, nil
}
