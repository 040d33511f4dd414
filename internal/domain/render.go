package domain

import (
	"bytes"
	"encoding/json"
)

const renderIndent = "  "

// RenderResult pretty-prints a result with two-space indentation. It reports
// false when there is nothing to show. Invalid JSON is returned verbatim.
func RenderResult(result AllocationResult) (string, bool) {
	if result.IsZero() {
		return "", false
	}
	trimmed := bytes.TrimSpace(result.Raw)

	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", renderIndent); err != nil {
		return string(trimmed), true
	}
	return buf.String(), true
}

// RenderRequest pretty-prints the body that will be sent for req.
func RenderRequest(req AllocationRequest) (string, error) {
	body, err := EncodeRequest(req)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", renderIndent); err != nil {
		return "", err
	}
	return buf.String(), nil
}
