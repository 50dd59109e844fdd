package api

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/eacsecretariat/eacassist/internal/models"
)

// maxStatusLen is counted in runes
const maxStatusLen = 200

// Refresh sends POST /refresh and discards the response body
func (c *Client) Refresh(ctx context.Context) error {
	_, err := c.RefreshStatus(ctx)
	return err
}

// RefreshStatus sends POST /refresh and reports the backend's status text.
// Bodies that are not {"status": ...} are reported verbatim (truncated).
func (c *Client) RefreshStatus(ctx context.Context) (*models.RefreshResponse, error) {
	body, err := c.post(ctx, "refresh", models.EndpointRefresh, nil)
	if err != nil {
		return nil, err
	}
	return parseRefreshResponse(body), nil
}

func parseRefreshResponse(body []byte) *models.RefreshResponse {
	if gjson.ValidBytes(body) {
		if status := gjson.GetBytes(body, "status"); status.Type == gjson.String {
			return &models.RefreshResponse{Status: status.String()}
		}
	}

	text := strings.TrimSpace(string(body))
	if runes := []rune(text); len(runes) > maxStatusLen {
		text = string(runes[:maxStatusLen]) + "..."
	}
	return &models.RefreshResponse{Status: text}
}
