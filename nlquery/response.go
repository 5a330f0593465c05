package nlquery

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// rawResponse is the translator's object before validation. Every member is kept raw so
// a mistyped key costs that key, not the whole response. Unknown keys are ignored.
type rawResponse struct {
	Filters      json.RawMessage `json:"filters"`
	SortBy       json.RawMessage `json:"sort_by"`
	SortOrder    json.RawMessage `json:"sort_order"`
	Limit        json.RawMessage `json:"limit"`
	Aggregate    json.RawMessage `json:"aggregate"`
	Intent       json.RawMessage `json:"intent"`
	Select       json.RawMessage `json:"select"`
	DateFilter   json.RawMessage `json:"date_filter"`
	SpecificDate json.RawMessage `json:"specific_date"`
}

// decodeResponse extracts and decodes the JSON object from a translator response.
func decodeResponse(raw string) (*rawResponse, error) {
	text := extractJSON(raw)
	if text == "" {
		return nil, errors.New("empty response from translator")
	}
	if !strings.HasPrefix(text, "{") {
		return nil, fmt.Errorf("translator response is not a JSON object: %.200s", text)
	}
	// only the first value is read; trailing notes after the object are ignored
	var resp rawResponse
	if err := json.NewDecoder(strings.NewReader(text)).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to parse translator response: %w (response: %.200s)", err, text)
	}
	return &resp, nil
}

// extractJSON strips a leading markdown code fence and any prose before the first object.
// Text after the object is left for the decoder to ignore.
func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	for _, fence := range []string{"```json", "```JSON", "```"} {
		if strings.HasPrefix(text, fence) {
			text = strings.TrimPrefix(text, fence)
			if idx := strings.Index(text, "```"); idx != -1 {
				text = text[:idx]
			}
			break
		}
	}
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return text
	}
	if start := strings.Index(text, "{"); start != -1 {
		return text[start:]
	}
	return text
}

// isNull reports whether a raw member is absent or JSON null.
func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// rawString decodes a string member. Quoted "none"/"null" count as absent.
func rawString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none", "null":
		return "", false
	}
	return s, true
}

// rawInt decodes an integer given as a number or a numeric string.
func rawInt(raw json.RawMessage) (int, error) {
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case json.Number:
		n = t
	case string:
		n = json.Number(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("expected an integer, got %s", raw)
	}
	if i, err := strconv.Atoi(n.String()); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("expected an integer, got %s", raw)
	}
	return int(f), nil
}
