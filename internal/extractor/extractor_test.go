package extractor

import (
	"reflect"
	"testing"

	"github.com/spigell/skillgap/internal/kb"
)

const testKB = `
hard_skills:
  - name: R
  - name: React
  - name: "C++"
    variations: [cpp]
  - name: "C#"
  - name: C
  - name: .NET
    variations: [dotnet]
  - name: Python
    variations: [py, pandas]
  - name: Power BI
    variations: [powerbi]
  - name: Business Intelligence
    variations: [bi]
  - name: Thermodynamics
    variations: [termodinamica]
  - name: Accounting
    variations: [contabilità]
  - name: Node.js
    variations: [nodejs]
  - name: Data Analysis
    variations: [analisi dei dati]
  - name: Analytics
    variations: [data analysis]
soft_skills:
  - name: Teamwork
    variations: [team player, lavoro di squadra]
  - name: Problem Solving
    variations: [problem-solving]
`

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()

	base, err := kb.Parse([]byte(testKB), "test", nil)
	if err != nil {
		t.Fatalf("loading test kb: %v", err)
	}
	return New(base, nil)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	e := newTestExtractor(t)

	tests := []struct {
		name string
		text string
		hard []string
		soft []string
	}{
		{
			name: "empty input",
			text: "",
			hard: []string{},
			soft: []string{},
		},
		{
			name: "single letter does not match inside words",
			text: "Built dashboards in React for the reporting team.",
			hard: []string{"React"},
			soft: []string{},
		},
		{
			name: "single letter matches on its own",
			text: "Statistics with R and Python.",
			hard: []string{"Python", "R"},
			soft: []string{},
		},
		{
			name: "symbol suffixes use relaxed boundaries",
			text: "Languages: C++, C#, .NET 8 and plain C.",
			hard: []string{".NET", "C", "C#", "C++"},
			soft: []string{},
		},
		{
			name: "symbol suffix glued to a version",
			text: "modern c++17 codebases",
			hard: []string{"C++"},
			soft: []string{},
		},
		{
			name: "prefix symbol inside compound names",
			text: "Backend on ASP.NET",
			hard: []string{".NET"},
			soft: []string{},
		},
		{
			name: "c does not fire inside c++",
			text: "c++ only",
			hard: []string{"C++"},
			soft: []string{},
		},
		{
			name: "longest phrase wins over embedded acronym",
			text: "Must know Power BI.",
			hard: []string{"Power BI"},
			soft: []string{},
		},
		{
			name: "standalone acronym still matches",
			text: "Experience in BI reporting",
			hard: []string{"Business Intelligence"},
			soft: []string{},
		},
		{
			name: "library names map to their language",
			text: "pandas and numpy wrangling",
			hard: []string{"Python"},
			soft: []string{},
		},
		{
			name: "italian with accents",
			text: "Esperienza in TERMODINAMICA e Contabilità; ottimo lavoro di squadra",
			hard: []string{"Accounting", "Thermodynamics"},
			soft: []string{"Teamwork"},
		},
		{
			name: "accents in text but not in variation",
			text: "contabilita generale",
			hard: []string{"Accounting"},
			soft: []string{},
		},
		{
			name: "dotted names keep their inner dot",
			text: "APIs in Node.js and nodejs",
			hard: []string{"Node.js"},
			soft: []string{},
		},
		{
			name: "shared surface forms fire every owner",
			text: "data analysis pipelines",
			hard: []string{"Analytics", "Data Analysis"},
			soft: []string{},
		},
		{
			name: "hyphenated soft skill and multi-line text",
			text: "Team\nplayer with strong problem-solving",
			hard: []string{},
			soft: []string{"Problem Solving", "Teamwork"},
		},
		{
			name: "no skills",
			text: "Expert in Cooking.",
			hard: []string{},
			soft: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hard, soft := e.Extract(tt.text, ModeCandidate)
			if !reflect.DeepEqual(hard, tt.hard) {
				t.Fatalf("expected hard %v, got %v", tt.hard, hard)
			}
			if !reflect.DeepEqual(soft, tt.soft) {
				t.Fatalf("expected soft %v, got %v", tt.soft, soft)
			}
		})
	}
}

func TestExtractModesAgree(t *testing.T) {
	e := newTestExtractor(t)
	text := "Python, Power BI and C++; team player"

	candidateHard, candidateSoft := e.Extract(text, ModeCandidate)
	requirementHard, requirementSoft := e.Extract(text, ModeRequirement)

	if !reflect.DeepEqual(candidateHard, requirementHard) || !reflect.DeepEqual(candidateSoft, requirementSoft) {
		t.Fatalf("modes disagree: %v/%v vs %v/%v", candidateHard, candidateSoft, requirementHard, requirementSoft)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	e := newTestExtractor(t)
	text := "C#, .NET, Python, pandas, R, React, BI, Power BI, termodinamica"

	firstHard, firstSoft := e.Extract(text, ModeRequirement)
	for i := 0; i < 20; i++ {
		hard, soft := e.Extract(text, ModeRequirement)
		if !reflect.DeepEqual(hard, firstHard) || !reflect.DeepEqual(soft, firstSoft) {
			t.Fatalf("run %d differs: %v/%v vs %v/%v", i, hard, soft, firstHard, firstSoft)
		}
	}
}

func TestExtractWithDefaultKB(t *testing.T) {
	base, err := kb.Default(nil)
	if err != nil {
		t.Fatalf("loading default kb: %v", err)
	}
	e := New(base, nil)

	hard, _ := e.Extract("Requires Python, Programming, Power BI, and Java.", ModeRequirement)
	expect := []string{"Java", "Power BI", "Programming", "Python"}
	if !reflect.DeepEqual(hard, expect) {
		t.Fatalf("expected %v, got %v", expect, hard)
	}

	hard, soft := e.Extract("energy engineer", ModeRequirement)
	if len(hard) != 0 || len(soft) != 0 {
		t.Fatalf("expected a bare title to yield no skills, got %v/%v", hard, soft)
	}

	hard, _ = e.Extract("Experience with GitLab CI/CD pipelines", ModeRequirement)
	if !reflect.DeepEqual(hard, []string{"CI/CD", "GitLab CI"}) {
		t.Fatalf("expected a combined pipeline name to yield both skills, got %v", hard)
	}

	hard, _ = e.Extract("GitLab CI and a separate CI/CD review", ModeRequirement)
	if !reflect.DeepEqual(hard, []string{"CI/CD", "GitLab CI"}) {
		t.Fatalf("expected both skills from separate mentions, got %v", hard)
	}

	hard, _ = e.Extract("JavaScript developer", ModeCandidate)
	if !reflect.DeepEqual(hard, []string{"JavaScript"}) {
		t.Fatalf("expected java not to fire inside javascript, got %v", hard)
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		expect  Mode
		wantErr bool
	}{
		{input: "", expect: ModeCandidate},
		{input: "candidate", expect: ModeCandidate},
		{input: " CV ", expect: ModeCandidate},
		{input: "requirement", expect: ModeRequirement},
		{input: "jd", expect: ModeRequirement},
		{input: "boss", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.input, err)
		}
		if got != tt.expect {
			t.Fatalf("expected %v for %q, got %v", tt.expect, tt.input, got)
		}
	}

	if ModeRequirement.String() != "requirement" || Mode(7).String() != "mode(7)" {
		t.Fatalf("unexpected mode strings")
	}
}
