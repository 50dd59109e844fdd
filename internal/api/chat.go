package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	apierrors "github.com/eacsecretariat/eacassist/internal/errors"
	"github.com/eacsecretariat/eacassist/internal/models"
)

// JSON paths in the /chat response
const (
	PathAnswer      = "answer"
	PathSource      = "source"
	PathContextUsed = "context_used"
)

// Chat sends a query to POST /chat and parses the answer
func (c *Client) Chat(ctx context.Context, query string) (*models.ChatResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	payload, err := json.Marshal(models.ChatRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	body, err := c.post(ctx, "chat", models.EndpointChat, payload)
	if err != nil {
		return nil, err
	}

	return parseChatResponse(body)
}

// parseChatResponse extracts {answer, source?} from the response body.
// A missing or non-string answer is a malformed response.
func parseChatResponse(body []byte) (*models.ChatResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return nil, apierrors.NewParseError("response is not a JSON object", "")
	}

	answer := parsed.Get(PathAnswer)
	if !answer.Exists() {
		return nil, apierrors.NewParseError("answer missing", PathAnswer)
	}
	if answer.Type != gjson.String {
		return nil, apierrors.NewParseError("answer is not a string", PathAnswer)
	}

	return &models.ChatResponse{
		Answer:      answer.String(),
		Source:      stringField(parsed, PathSource),
		ContextUsed: stringField(parsed, PathContextUsed),
	}, nil
}

// stringField returns the string at path, or "" when absent, null, or not a string
func stringField(parsed gjson.Result, path string) string {
	v := parsed.Get(path)
	if v.Type != gjson.String {
		return ""
	}
	return v.String()
}
