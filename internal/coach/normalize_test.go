package coach

import (
	"encoding/json"
	"testing"

	"github.com/priyam/econcoach/internal/exam"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain text", "A model answer.", "A model answer."},
		{"json string unquoted", `"A model answer."`, "A model answer."},
		{"empty", "", noResponse},
		{"whitespace only", "   \n  ", noResponse},
		{"empty json string", `""`, noResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeText(json.RawMessage(tt.raw)); got != tt.want {
				t.Errorf("normalizeText(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeCoach(t *testing.T) {
	got := normalizeCoach(json.RawMessage(`{"ao1": 7, "ao2": 15, "ao3": -2, "advice": "define first"}`))

	if got.AO1 != 7 {
		t.Errorf("AO1 = %d", got.AO1)
	}
	if got.AO2 != 10 {
		t.Errorf("AO2 = %d, want clamped to 10", got.AO2)
	}
	if got.AO3 != 0 {
		t.Errorf("AO3 = %d, want clamped to 0", got.AO3)
	}
	if got.Advice != "define first" {
		t.Errorf("Advice = %q", got.Advice)
	}
}

func TestNormalizeCoachGarbage(t *testing.T) {
	got := normalizeCoach(json.RawMessage(`not json at all`))
	if got.AO1 != 0 || got.AO2 != 0 || got.AO3 != 0 || got.Advice != "" {
		t.Errorf("expected zero result for garbage, got %+v", got)
	}
}

func TestNormalizeClozeValid(t *testing.T) {
	raw := json.RawMessage(`{
		"text": "Demand-pull [BLANK_1] occurs when [BLANK_2] grows faster than supply.",
		"blanks": [
			{"id": 1, "original": "inflation", "hint": "AO1: key term"},
			{"id": 2, "original": "aggregate demand", "hint": "AO2: driver"}
		]
	}`)

	ex := normalizeCloze(raw)
	if ex == nil {
		t.Fatal("expected a usable exercise")
	}
	if len(ex.Blanks) != 2 {
		t.Fatalf("got %d blanks", len(ex.Blanks))
	}
	if ex.Blanks[0].Original != "inflation" {
		t.Errorf("blank 1 original = %q", ex.Blanks[0].Original)
	}
}

func TestNormalizeClozeUnusable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", `not json`},
		{"empty text", `{"text": "", "blanks": [{"id": 1}]}`},
		{"no blanks", `{"text": "some [BLANK_1] text", "blanks": []}`},
		{"only nonpositive ids", `{"text": "[BLANK_1]", "blanks": [{"id": 0}, {"id": -3}]}`},
		{"token mismatch", `{"text": "[BLANK_1] and [BLANK_2]", "blanks": [{"id": 1}]}`},
		{"blank without token", `{"text": "[BLANK_1]", "blanks": [{"id": 1}, {"id": 2}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ex := normalizeCloze(json.RawMessage(tt.raw)); ex != nil {
				t.Errorf("expected nil, got %+v", ex)
			}
		})
	}
}

func TestNormalizeClozeFeedback(t *testing.T) {
	blanks := []exam.ClozeBlank{{ID: 1}, {ID: 3}}
	raw := json.RawMessage(`{"feedback": [
		{"id": 1, "score": 5, "comment": "exact"},
		{"id": 2, "comment": "no score"},
		{"id": 3, "score": 3, "comment": "imprecise"},
		{"id": 4, "score": 4, "comment": "unknown blank"},
		{"id": 1, "score": 9, "comment": "out of range"}
	]}`)

	got := normalizeClozeFeedback(raw, blanks)

	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(got), got)
	}
	if got[1].Score != 5 || got[1].Comment != "exact" {
		t.Errorf("blank 1 = %+v", got[1])
	}
	if got[3].Score != 3 {
		t.Errorf("blank 3 = %+v", got[3])
	}
	if _, ok := got[2]; ok {
		t.Error("entry with missing score should be discarded")
	}
	if _, ok := got[4]; ok {
		t.Error("entry for unknown blank should be discarded")
	}
}

func TestNormalizeClozeFeedbackMissingList(t *testing.T) {
	got := normalizeClozeFeedback(json.RawMessage(`{}`), []exam.ClozeBlank{{ID: 1}})
	if got == nil {
		t.Fatal("expected empty map, not nil")
	}
	if len(got) != 0 {
		t.Errorf("got %v", got)
	}
}

func TestNormalizeAnalysis(t *testing.T) {
	raw := json.RawMessage(`{
		"knowledge": [{"point": "Definition of inflation", "sources": ["2022 P22 Q2a"]}],
		"analysis": [{"point": "AD shift mechanism"}],
		"evaluation": [{"point": ""}],
		"debates": [
			{"topic": "Fiscal vs monetary", "supporting": [{"point": "speed"}], "limiting": [], "dependsOn": null},
			{"topic": ""}
		]
	}`)

	got := normalizeAnalysis(raw, "The macroeconomy", 4)
	if got == nil {
		t.Fatal("expected a usable analysis")
	}
	if got.Chapter != "The macroeconomy" || got.QuestionCount != 4 {
		t.Errorf("header fields wrong: %+v", got)
	}
	if got.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
	if len(got.Knowledge) != 1 || len(got.Analysis) != 1 {
		t.Errorf("point counts: knowledge %d, analysis %d", len(got.Knowledge), len(got.Analysis))
	}
	if len(got.Evaluation) != 0 {
		t.Error("empty point should be dropped")
	}
	if got.Analysis[0].Sources == nil {
		t.Error("missing sources should default to empty slice")
	}
	if len(got.Debates) != 1 {
		t.Fatalf("got %d debates, want 1 (empty topic dropped)", len(got.Debates))
	}
	if got.Debates[0].DependsOn == nil {
		t.Error("nil dependsOn should default to empty slice")
	}
}

func TestNormalizeAnalysisUnusable(t *testing.T) {
	for _, raw := range []string{`garbage`, `{}`, `{"knowledge": [], "debates": []}`} {
		if got := normalizeAnalysis(json.RawMessage(raw), "c", 1); got != nil {
			t.Errorf("normalizeAnalysis(%q) = %+v, want nil", raw, got)
		}
	}
}

func TestNormalizeImprove(t *testing.T) {
	got := normalizeImprove(json.RawMessage(`{"improved": "Better text.", "reason": "Completes the chain."}`))
	if got.Improved != "Better text." || got.Reason != "Completes the chain." {
		t.Errorf("got %+v", got)
	}

	empty := normalizeImprove(json.RawMessage(`broken`))
	if empty.Improved != "" || empty.Reason != "" {
		t.Errorf("expected zero result for garbage, got %+v", empty)
	}
}
