package response

// Success is the JSON envelope for successful API calls.
type Success struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Meta    any    `json:"meta,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Error is the JSON envelope for failed API calls. DevMessage, Details and
// Trace are only filled outside production.
type Error struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ErrorCode  string `json:"error_code,omitempty"`
	DevMessage string `json:"dev_message,omitempty"`
	Details    any    `json:"details,omitempty"`
	Trace      string `json:"trace,omitempty"`
}
