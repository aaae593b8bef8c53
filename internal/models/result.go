package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Kind discriminates the two response shapes returned by the scan endpoint
type Kind int

const (
	// KindSimple is the {product_name, compliance_status, details, message} shape
	KindSimple Kind = iota
	// KindScored carries compliance_score and structured per-check details
	KindScored
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindScored:
		return "scored"
	default:
		return "unknown"
	}
}

// Undefined is what a field the server left out renders as.
const Undefined = "undefined"

// Result is a decoded /scan response. Exactly one of Simple or Scored is set,
// matching Kind.
type Result struct {
	Kind   Kind
	Simple *SimpleResult
	Scored *ScoredResult
}

// SimpleResult is the pass/fail response shape
type SimpleResult struct {
	ProductName      Text
	ComplianceStatus Text
	Details          []Entry
	Message          Text
	RawText          Text
}

// ScoredResult is the percentage response shape
type ScoredResult struct {
	ComplianceScore  Score
	ComplianceStatus Text
	Details          []Check
	Message          Text
	ImageURL         string
}

// Entry is one key/value row of a simple result
type Entry struct {
	Key   string
	Value Text
}

// Check is one structured row of a scored result
type Check struct {
	Key   string
	Found bool
	Label Text
	Value Text
}

// Text is a JSON string field that remembers whether the server sent it.
// null and absent both leave Set false.
type Text struct {
	Value string
	Set   bool
}

// NewText returns a set Text
func NewText(s string) Text {
	return Text{Value: s, Set: true}
}

func (t Text) String() string {
	if !t.Set {
		return Undefined
	}
	return t.Value
}

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Text{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = NewText(s)
		return nil
	}
	// numbers, booleans and nested values are shown as their JSON text
	*t = NewText(string(data))
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Set {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// Score is compliance_score, 0-100. Set means a number arrived; anything
// else the server sent is kept verbatim in Raw.
type Score struct {
	Value int
	Set   bool
	Raw   string
}

func (s Score) String() string {
	if s.Set {
		return strconv.Itoa(s.Value)
	}
	if s.Raw != "" {
		return s.Raw
	}
	return Undefined
}

func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = Score{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*s = Score{Value: int(math.Round(f)), Set: true}
		return nil
	}
	// "85" arrives from some server builds
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		slog.Debug("Non-numeric compliance_score", "value", string(data))
		*s = Score{Raw: string(data)}
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		slog.Debug("Non-numeric compliance_score", "value", str)
		*s = Score{Raw: str}
		return nil
	}
	*s = Score{Value: int(math.Round(f)), Set: true}
	return nil
}

// UnmarshalJSON selects the shape by the presence of compliance_score.
func (r *Result) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("scan result is not a JSON object: %w", err)
	}

	if _, scored := fields["compliance_score"]; scored {
		res, err := decodeScored(fields)
		if err != nil {
			return err
		}
		*r = Result{Kind: KindScored, Scored: res}
		return nil
	}

	res, err := decodeSimple(fields)
	if err != nil {
		return err
	}
	*r = Result{Kind: KindSimple, Simple: res}
	return nil
}

// Status returns compliance_status regardless of shape
func (r Result) Status() Text {
	switch r.Kind {
	case KindScored:
		if r.Scored != nil {
			return r.Scored.ComplianceStatus
		}
	case KindSimple:
		if r.Simple != nil {
			return r.Simple.ComplianceStatus
		}
	}
	return Text{}
}

// Message returns the free-text message regardless of shape
func (r Result) Message() Text {
	switch r.Kind {
	case KindScored:
		if r.Scored != nil {
			return r.Scored.Message
		}
	case KindSimple:
		if r.Simple != nil {
			return r.Simple.Message
		}
	}
	return Text{}
}

// CheckCounts returns how many details entries passed out of the total.
// For simple results an entry passes unless its value is "Missing".
func (r Result) CheckCounts() (found, total int) {
	switch r.Kind {
	case KindScored:
		if r.Scored == nil {
			return 0, 0
		}
		for _, c := range r.Scored.Details {
			if c.Found {
				found++
			}
		}
		return found, len(r.Scored.Details)
	case KindSimple:
		if r.Simple == nil {
			return 0, 0
		}
		for _, e := range r.Simple.Details {
			if e.Value.Set && e.Value.Value != "Missing" {
				found++
			}
		}
		return found, len(r.Simple.Details)
	}
	return 0, 0
}

func decodeSimple(fields map[string]json.RawMessage) (*SimpleResult, error) {
	res := &SimpleResult{}
	if err := decodeText(fields, "product_name", &res.ProductName); err != nil {
		return nil, err
	}
	if err := decodeText(fields, "compliance_status", &res.ComplianceStatus); err != nil {
		return nil, err
	}
	if err := decodeText(fields, "message", &res.Message); err != nil {
		return nil, err
	}
	if err := decodeText(fields, "raw_text", &res.RawText); err != nil {
		return nil, err
	}

	err := eachOrdered(fields["details"], func(key string, raw json.RawMessage) error {
		var v Text
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("invalid details[%q]: %w", key, err)
		}
		res.Details = append(res.Details, Entry{Key: key, Value: v})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func decodeScored(fields map[string]json.RawMessage) (*ScoredResult, error) {
	res := &ScoredResult{}
	if err := json.Unmarshal(fields["compliance_score"], &res.ComplianceScore); err != nil {
		return nil, err
	}
	if err := decodeText(fields, "compliance_status", &res.ComplianceStatus); err != nil {
		return nil, err
	}
	if err := decodeText(fields, "message", &res.Message); err != nil {
		return nil, err
	}
	var imageURL Text
	if err := decodeText(fields, "image_url", &imageURL); err != nil {
		return nil, err
	}
	res.ImageURL = imageURL.Value

	err := eachOrdered(fields["details"], func(key string, raw json.RawMessage) error {
		check := Check{Key: key}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			var item struct {
				Found json.RawMessage `json:"found"`
				Label Text            `json:"label"`
				Value Text            `json:"value"`
			}
			if err := json.Unmarshal(trimmed, &item); err != nil {
				return fmt.Errorf("invalid details[%q]: %w", key, err)
			}
			check.Found = truthy(item.Found)
			check.Label = item.Label
			check.Value = item.Value
		} else {
			// older servers send plain strings here
			if err := json.Unmarshal(trimmed, &check.Value); err != nil {
				return fmt.Errorf("invalid details[%q]: %w", key, err)
			}
		}
		res.Details = append(res.Details, check)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func decodeText(fields map[string]json.RawMessage, key string, dst *Text) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

// truthy reports whether a JSON value counts as true: false, null, 0, "" and
// absent do not, every other value does.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 't':
		return true
	case 'f', 'n':
		return false
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false
		}
		if s != "" {
			slog.Debug("Non-boolean found", "value", s)
		}
		return s != ""
	case '{', '[':
		slog.Debug("Non-boolean found", "value", string(raw))
		return true
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && f != 0
	}
}

// eachOrdered walks a JSON object in document order. Absent, null and
// non-object input yield no calls.
func eachOrdered(raw json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("invalid details: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		slog.Debug("Ignoring details that are not an object", "details", string(raw))
		return nil
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("invalid details: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("invalid details: unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("invalid details[%q]: %w", key, err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return nil
}
