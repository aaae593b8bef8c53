package models

import (
	"encoding/json"
	"testing"
)

func TestResultUnmarshalSimple(t *testing.T) {
	body := `{
		"product_name": "Scanned Product",
		"compliance_status": "Non-Compliant",
		"details": {"mrp": "50.00", "net_qty": "100 g", "fssai": "Missing", "best_before_date": null},
		"message": "Analysis complete."
	}`

	var r Result
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if r.Kind != KindSimple || r.Simple == nil || r.Scored != nil {
		t.Fatalf("Expected simple result, got kind %s", r.Kind)
	}
	if r.Simple.ProductName.String() != "Scanned Product" {
		t.Errorf("Expected product name, got %q", r.Simple.ProductName)
	}

	wantKeys := []string{"mrp", "net_qty", "fssai", "best_before_date"}
	if len(r.Simple.Details) != len(wantKeys) {
		t.Fatalf("Expected %d details, got %d", len(wantKeys), len(r.Simple.Details))
	}
	for i, key := range wantKeys {
		if r.Simple.Details[i].Key != key {
			t.Errorf("details[%d]: expected key %q, got %q", i, key, r.Simple.Details[i].Key)
		}
	}
	if got := r.Simple.Details[3].Value.String(); got != Undefined {
		t.Errorf("Expected null detail to render as %q, got %q", Undefined, got)
	}

	found, total := r.CheckCounts()
	if found != 2 || total != 4 {
		t.Errorf("Expected 2/4 checks, got %d/%d", found, total)
	}
}

func TestResultUnmarshalScored(t *testing.T) {
	body := `{
		"compliance_score": 80,
		"compliance_status": "Partially Compliant",
		"details": {
			"mrp": {"found": true, "label": "MRP", "value": "Rs. 50.00"},
			"net_qty": {"found": true, "label": "Net Quantity", "value": "100 g"},
			"manufacturer": {"found": false, "label": "Manufacturer", "value": "Missing"}
		},
		"message": "Analysis complete.",
		"image_url": "/static/uploads/scan_1.jpg"
	}`

	var r Result
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if r.Kind != KindScored || r.Scored == nil {
		t.Fatalf("Expected scored result, got kind %s", r.Kind)
	}
	if !r.Scored.ComplianceScore.Set || r.Scored.ComplianceScore.Value != 80 {
		t.Errorf("Expected score 80, got %+v", r.Scored.ComplianceScore)
	}
	if r.Scored.ImageURL != "/static/uploads/scan_1.jpg" {
		t.Errorf("Unexpected image url %q", r.Scored.ImageURL)
	}
	if r.Status().String() != "Partially Compliant" {
		t.Errorf("Unexpected status %q", r.Status())
	}

	checks := r.Scored.Details
	if len(checks) != 3 {
		t.Fatalf("Expected 3 checks, got %d", len(checks))
	}
	if checks[2].Key != "manufacturer" || checks[2].Found {
		t.Errorf("Expected manufacturer missing, got %+v", checks[2])
	}
	if checks[0].Label.String() != "MRP" || checks[0].Value.String() != "Rs. 50.00" {
		t.Errorf("Unexpected first check %+v", checks[0])
	}
}

func TestResultDiscriminant(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Kind
	}{
		{name: "no score is simple", body: `{"compliance_status": "Compliant"}`, want: KindSimple},
		{name: "score present is scored", body: `{"compliance_score": 100}`, want: KindScored},
		{name: "null score is still scored", body: `{"compliance_score": null}`, want: KindScored},
		{name: "empty object is simple", body: `{}`, want: KindSimple},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Result
			if err := json.Unmarshal([]byte(tt.body), &r); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if r.Kind != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, r.Kind)
			}
		})
	}
}

func TestMissingFieldsRenderUndefined(t *testing.T) {
	var r Result
	if err := json.Unmarshal([]byte(`{"compliance_score": null, "details": {"mrp": "50"}}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if r.Scored.ComplianceScore.String() != Undefined {
		t.Errorf("Expected undefined score, got %q", r.Scored.ComplianceScore)
	}
	if r.Status().String() != Undefined || r.Message().String() != Undefined {
		t.Errorf("Expected undefined status and message")
	}
	// plain string under a scored result is tolerated
	if len(r.Scored.Details) != 1 || r.Scored.Details[0].Value.String() != "50" || r.Scored.Details[0].Found {
		t.Errorf("Unexpected details %+v", r.Scored.Details)
	}
}

func TestScoreUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantSet bool
		wantStr string
	}{
		{name: "integer", input: `85`, want: 85, wantSet: true, wantStr: "85"},
		{name: "fraction rounds", input: `66.6`, want: 67, wantSet: true, wantStr: "67"},
		{name: "numeric string", input: `"70"`, want: 70, wantSet: true, wantStr: "70"},
		{name: "word", input: `"high"`, wantStr: "high"},
		{name: "boolean", input: `true`, wantStr: "true"},
		{name: "null", input: `null`, wantStr: Undefined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Score
			if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if s.Set != tt.wantSet || (tt.wantSet && s.Value != tt.want) {
				t.Errorf("Expected %d (set %v), got %+v", tt.want, tt.wantSet, s)
			}
			if s.String() != tt.wantStr {
				t.Errorf("Expected %q, got %q", tt.wantStr, s.String())
			}
		})
	}
}

func TestResultUnmarshalMalformedFields(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantKind  Kind
		wantRows  int
		wantFound []bool
		wantScore string
	}{
		{
			name:      "non-numeric score",
			body:      `{"compliance_score": "high", "compliance_status": "Fully Compliant", "details": {}}`,
			wantKind:  KindScored,
			wantFound: []bool{},
			wantScore: "high",
		},
		{
			name:      "non-boolean found",
			body:      `{"compliance_score": 50, "details": {"mrp": {"found": "yes", "value": "50"}, "fssai": {"found": 0}, "batch": {"found": ""}, "net_qty": {"found": 1}}}`,
			wantKind:  KindScored,
			wantRows:  4,
			wantFound: []bool{true, false, false, true},
			wantScore: "50",
		},
		{
			name:      "array details",
			body:      `{"compliance_score": 50, "details": ["mrp"]}`,
			wantKind:  KindScored,
			wantFound: []bool{},
			wantScore: "50",
		},
		{
			name:     "string details on simple result",
			body:     `{"product_name": "Tea", "details": "none"}`,
			wantKind: KindSimple,
		},
		{
			name:     "numeric status",
			body:     `{"compliance_status": 1, "details": {"mrp": 50}}`,
			wantKind: KindSimple,
			wantRows: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Result
			if err := json.Unmarshal([]byte(tt.body), &r); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if r.Kind != tt.wantKind {
				t.Fatalf("Expected %s, got %s", tt.wantKind, r.Kind)
			}
			if _, total := r.CheckCounts(); total != tt.wantRows {
				t.Errorf("Expected %d rows, got %d", tt.wantRows, total)
			}
			if r.Kind != KindScored {
				return
			}
			if got := r.Scored.ComplianceScore.String(); got != tt.wantScore {
				t.Errorf("Expected score %q, got %q", tt.wantScore, got)
			}
			for i, want := range tt.wantFound {
				if r.Scored.Details[i].Found != want {
					t.Errorf("details[%d]: expected found %v, got %v", i, want, r.Scored.Details[i].Found)
				}
			}
		})
	}
}

func TestResultUnmarshalRejectsNonObject(t *testing.T) {
	var r Result
	if err := json.Unmarshal([]byte(`["not", "an", "object"]`), &r); err == nil {
		t.Error("Expected error for array body")
	}
}
