package scoring

import (
	"encoding/json"
	"fmt"
	"strings"
)

// HTTPError reports a non-2xx response from the scoring service.
type HTTPError struct {
	Path   string
	Status int
	Detail string
}

// maxDetailRunes caps plain-text error bodies kept on HTTPError.
const maxDetailRunes = 200

func (e *HTTPError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: http %d", e.Path, e.Status)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Path, e.Status, e.Detail)
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

// decodeHTTPError reads FastAPI style {"detail": ...} or {"error": ...}
// bodies. Validation errors carry a list in detail; it is kept as raw JSON.
func decodeHTTPError(path string, status int, body []byte) error {
	httpErr := &HTTPError{Path: path, Status: status}
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		switch {
		case len(resp.Detail) > 0 && string(resp.Detail) != "null":
			var text string
			if json.Unmarshal(resp.Detail, &text) == nil {
				httpErr.Detail = text
			} else {
				httpErr.Detail = string(resp.Detail)
			}
		case resp.Error != "":
			httpErr.Detail = resp.Error
		}
		return httpErr
	}
	httpErr.Detail = strings.TrimSpace(string(body))
	if runes := []rune(httpErr.Detail); len(runes) > maxDetailRunes {
		httpErr.Detail = string(runes[:maxDetailRunes])
	}
	return httpErr
}
