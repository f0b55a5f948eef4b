package httpclient

import (
	"encoding/json"
)

// ServerMessage extracts a human-readable message from an error body. The
// directory backend answers either {"error":"text"}, {"error":{"code":..,
// "message":..}} or {"message":"text"}. Returns the code too when present.
func ServerMessage(body []byte) (code, message string) {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &envelope) != nil {
		return "", ""
	}

	if len(envelope.Error) > 0 {
		var text string
		if json.Unmarshal(envelope.Error, &text) == nil && text != "" {
			return "", text
		}
		var structured struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &structured) == nil && structured.Message != "" {
			return structured.Code, structured.Message
		}
	}
	return "", envelope.Message
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
