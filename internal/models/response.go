package models

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Query string `json:"query"`
}

// ChatResponse is the parsed body of a successful POST /chat
type ChatResponse struct {
	Answer      string
	Source      string // empty when absent or null
	ContextUsed string // diagnostic hint from the backend, e.g. "Direct Look-up"
}

// RefreshResponse is the parsed body of POST /refresh.
// The chat session ignores it; the refresh command reports Status.
type RefreshResponse struct {
	Status string
}
