package report

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/spigell/skillgap/internal/matcher"
)

func sampleReport() *matcher.Report {
	return &matcher.Report{
		MatchPercentage:       62.5,
		MatchingHard:          []string{"Programming", "Python"},
		Transferable:          map[string][]string{"Power BI": {"Tableau"}},
		MissingHard:           []string{"Java"},
		ExtraHard:             []string{},
		SoftStatedStrengths:   []string{"Teamwork"},
		SoftInterviewVerified: []string{},
		SeniorityInfo: &matcher.SeniorityInfo{
			BestRoleDetected: "Business Intelligence Developer",
			Strategy:         "containment",
			Category:         "Data",
			Seniority:        "Mid",
		},
	}
}

func TestBandFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score  float64
		expect Band
	}{
		{score: 0, expect: BandLow},
		{score: 39.9, expect: BandLow},
		{score: 40, expect: BandMedium},
		{score: 75, expect: BandMedium},
		{score: 75.1, expect: BandHigh},
		{score: 100, expect: BandHigh},
	}

	for _, tt := range tests {
		if got := BandFor(tt.score); got != tt.expect {
			t.Fatalf("expected %s for %.1f, got %s", tt.expect, tt.score, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		expect  Format
		wantErr bool
	}{
		{input: "", expect: FormatText},
		{input: "TEXT", expect: FormatText},
		{input: "json", expect: FormatJSON},
		{input: " yml ", expect: FormatYAML},
		{input: "yaml", expect: FormatYAML},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			continue
		}
		if err != nil || got != tt.expect {
			t.Fatalf("expected %s for %q, got %s (%v)", tt.expect, tt.input, got, err)
		}
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleReport(), FormatText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Match: 62.5% (medium)",
		"Detected Role: Business Intelligence Developer (Data, Mid) via containment",
		"Matching Hard Skills: Programming, Python",
		"  Power BI <- Tableau",
		"Missing Hard Skills: Java",
		"Extra Hard Skills: -",
		"Soft Skills Stated: Teamwork",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestWriteStructured(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleReport(), FormatJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["band"] != "medium" || decoded["match_percentage"] != 62.5 {
		t.Fatalf("unexpected json fields: %v", decoded)
	}
	if _, ok := decoded["seniority_info"]; !ok {
		t.Fatalf("expected seniority_info in %v", decoded)
	}

	buf.Reset()
	if err := Write(&buf, sampleReport(), FormatYAML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded = nil
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if decoded["band"] != "medium" {
		t.Fatalf("expected the band next to the report fields, got %v", decoded)
	}
	if missing, ok := decoded["missing_hard"].([]any); !ok || len(missing) != 1 || missing[0] != "Java" {
		t.Fatalf("unexpected missing_hard: %v", decoded["missing_hard"])
	}

	if err := Write(&buf, sampleReport(), Format("xml")); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}

func TestWriteCareers(t *testing.T) {
	matches := []matcher.CareerMatch{
		{Role: "Energy Engineer", Score: 100, Matched: []string{"AutoCAD"}, Missing: []string{}, Category: "Engineering", Seniority: "Mid"},
		{Role: "Data Analyst", Score: 20, Matched: []string{"SQL"}, Missing: []string{"Excel"}, Category: "Data"},
	}

	var buf bytes.Buffer
	if err := WriteCareers(&buf, matches, FormatText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Energy Engineer") || !strings.Contains(out, "100.0% (high) [Engineering, Mid]") {
		t.Fatalf("unexpected ranking output:\n%s", out)
	}
	if !strings.Contains(out, "missing: Excel") {
		t.Fatalf("expected missing skills listed:\n%s", out)
	}

	buf.Reset()
	if err := WriteCareers(&buf, nil, FormatText); err != nil || !strings.Contains(buf.String(), "No careers matched") {
		t.Fatalf("unexpected empty output %q (%v)", buf.String(), err)
	}

	buf.Reset()
	if err := WriteCareers(&buf, matches, FormatJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded []matcher.CareerMatch
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !reflect.DeepEqual(decoded, matches) {
		t.Fatalf("expected %+v, got %+v", matches, decoded)
	}
}

func TestByCategory(t *testing.T) {
	t.Parallel()

	matches := []matcher.CareerMatch{
		{Role: "Data Scientist", Score: 80, Category: "Data"},
		{Role: "Energy Engineer", Score: 60, Category: "Engineering"},
		{Role: "Data Analyst", Score: 40, Category: "Data"},
		{Role: "Placeholder", Score: 10},
	}

	grouped := ByCategory(matches)
	if len(grouped) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(grouped))
	}

	data := grouped["Data"]
	if len(data) != 2 || data[0].Role != "Data Scientist" || data[1].Role != "Data Analyst" {
		t.Fatalf("expected ranking order inside the group, got %+v", data)
	}

	if len(grouped["uncategorized"]) != 1 {
		t.Fatalf("expected a fallback group, got %+v", grouped)
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	value := map[string][]string{"hard": {"Python"}}

	var buf bytes.Buffer
	if err := Encode(&buf, value, FormatYAML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "hard:\n") || !strings.Contains(buf.String(), "- Python") {
		t.Fatalf("unexpected yaml %q", buf.String())
	}

	if err := Encode(&buf, value, FormatText); err == nil {
		t.Fatalf("expected text encoding to be rejected")
	}
}
