// Package exam holds the domain model: past-paper questions, per-question
// work products, cloze exercises, and chapter-level analyses.
package exam

import (
	"strconv"
	"strings"
	"time"
)

// Question identifies one past-paper essay question. Records are immutable;
// an edit produces a replacement record in the edited store and deletion is
// a soft-delete id set (see catalog.go).
type Question struct {
	ID         string `json:"id"`
	Year       int    `json:"year"`
	Paper      string `json:"paper"`
	Variant    string `json:"variant"`
	Number     string `json:"number"`
	Topic      string `json:"topic"`
	Chapter    string `json:"chapter"`
	Text       string `json:"text"`
	MarkScheme string `json:"markScheme"`
	MaxMarks   int    `json:"maxMarks"`
}

// QuestionState is the per-question derived work product. Created lazily on
// first write; string fields default to empty.
type QuestionState struct {
	// ModelAnswer is the last generated full model answer.
	ModelAnswer string `json:"modelAnswer"`

	// Deconstruction is the last command-word deconstruction analysis.
	Deconstruction string `json:"deconstruction"`

	// Essay is the student's submitted essay text.
	Essay string `json:"essay"`

	// Feedback is the last grading feedback for the essay.
	Feedback string `json:"feedback"`

	// Draft is the student's real-time coaching draft.
	Draft string `json:"draft"`

	// Cloze is the generated fill-in-the-blank exercise, if any.
	Cloze *ClozeExercise `json:"cloze,omitempty"`

	// ClozeFeedback holds per-blank grading results keyed by blank id.
	ClozeFeedback map[int]ClozeFeedback `json:"clozeFeedback,omitempty"`
}

// ClozeExercise is a fill-in-the-blank text derived from a model answer.
// The text embeds one [BLANK_<id>] token per blank.
type ClozeExercise struct {
	Text   string       `json:"text"`
	Blanks []ClozeBlank `json:"blanks"`
}

// ClozeBlank is one removed span inside an exercise text.
type ClozeBlank struct {
	ID       int    `json:"id"`
	Original string `json:"original"`
	Hint     string `json:"hint"`
}

// ClozeFeedback is the grading result for one blank.
// Score is on a 1-5 scale.
type ClozeFeedback struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// ChapterAnalysis aggregates mark-scheme insight across every question of
// one chapter. Recomputed wholesale; a new analysis fully replaces the
// stored entry for its chapter.
type ChapterAnalysis struct {
	Chapter       string           `json:"chapter"`
	GeneratedAt   time.Time        `json:"generatedAt"`
	QuestionCount int              `json:"questionCount"`
	Knowledge     []AnalysisPoint  `json:"knowledge"`  // AO1
	Analysis      []AnalysisPoint  `json:"analysis"`   // AO2
	Evaluation    []AnalysisPoint  `json:"evaluation"` // AO3
	Debates       []DebateAnalysis `json:"debates"`
}

// AnalysisPoint is a single extracted point with references back to the
// questions that evidenced it.
type AnalysisPoint struct {
	Point   string   `json:"point"`
	Sources []string `json:"sources"`
}

// DebateAnalysis captures one recurring debate across a chapter's mark
/// schemes: points for, points against, and the factors a judgement
// depends on.
type DebateAnalysis struct {
	Topic      string          `json:"topic"`
	Supporting []AnalysisPoint `json:"supporting"`
	Limiting   []AnalysisPoint `json:"limiting"`
	DependsOn  []AnalysisPoint `json:"dependsOn"`
}

// Ref renders a short source reference for a question, e.g. "2022 P22 Q3a".
func (q Question) Ref() string {
	var parts []string
	if q.Year > 0 {
		parts = append(parts, strconv.Itoa(q.Year))
	}
	if q.Paper != "" {
		parts = append(parts, "P"+q.Paper+q.Variant)
	}
	if q.Number != "" {
		parts = append(parts, "Q"+q.Number)
	}
	if len(parts) == 0 {
		return q.ID
	}
	return strings.Join(parts, " ")
}
