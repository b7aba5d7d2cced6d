package core

import (
	"bytes"
	"encoding/json"
)

// UnwrapData strips the backend's success envelope. Current backends return
// payloads bare or under "data"; legacy ones used "res". Anything else is
// returned untouched.
func UnwrapData(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	envelope := map[string]json.RawMessage{}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return raw
	}
	if data, ok := envelope["data"]; ok {
		return data
	}
	if data, ok := envelope["res"]; ok {
		return data
	}
	return raw
}
