package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/priyam/econcoach/internal/exam"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil DB")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSaveQuestionKeepsPositionOnUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := exam.Question{ID: "q1", Text: "first"}
	second := exam.Question{ID: "q2", Text: "second"}
	if err := s.SaveQuestion(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveQuestion(ctx, second); err != nil {
		t.Fatal(err)
	}

	// Replacing q1 must not move it behind q2.
	first.Text = "first edited"
	if err := s.SaveQuestion(ctx, first); err != nil {
		t.Fatal(err)
	}

	edited, err := s.ListEdited(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(edited) != 2 {
		t.Fatalf("got %d questions", len(edited))
	}
	if edited[0].ID != "q1" || edited[0].Text != "first edited" {
		t.Errorf("position lost on update: %+v", edited)
	}
	if edited[1].ID != "q2" {
		t.Errorf("order wrong: %+v", edited)
	}
}

func TestSaveQuestionRequiresID(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveQuestion(context.Background(), exam.Question{Text: "no id"}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestDeleteAndRestore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.MarkDeleted(ctx, "2022-22-2a"); err != nil {
		t.Fatal(err)
	}
	// Re-deleting is a no-op, not an error.
	if err := s.MarkDeleted(ctx, "2022-22-2a"); err != nil {
		t.Fatal(err)
	}

	deleted, err := s.DeletedIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !deleted["2022-22-2a"] {
		t.Error("id not in deleted set")
	}

	if err := s.Restore(ctx, "2022-22-2a"); err != nil {
		t.Fatal(err)
	}
	deleted, err = s.DeletedIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if deleted["2022-22-2a"] {
		t.Error("id still deleted after restore")
	}
}

func TestEffectiveCatalogReflectsEdits(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := exam.BaseCatalog()
	edit := base[0]
	edit.Text = "edited text"
	if err := s.SaveQuestion(ctx, edit); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkDeleted(ctx, base[1].ID); err != nil {
		t.Fatal(err)
	}

	catalog, err := s.EffectiveCatalog(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if got, ok := exam.FindQuestion(catalog, base[0].ID); !ok || got.Text != "edited text" {
		t.Errorf("edit not applied: %+v", got)
	}
	if _, ok := exam.FindQuestion(catalog, base[1].ID); ok {
		t.Error("deleted question still present")
	}
	if len(catalog) != len(base)-1 {
		t.Errorf("catalog size %d, want %d", len(catalog), len(base)-1)
	}
}

func TestQuestionStateZeroWhenAbsent(t *testing.T) {
	s := openTestStore(t)

	state, err := s.QuestionState(context.Background(), "never-written")
	if err != nil {
		t.Fatal(err)
	}
	if state.ModelAnswer != "" || state.Cloze != nil {
		t.Errorf("expected zero state, got %+v", state)
	}
}

func TestMergeQuestionStateAccumulates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.MergeQuestionState(ctx, "q1", exam.StateUpdate{ModelAnswer: exam.String("answer")}); err != nil {
		t.Fatal(err)
	}
	merged, err := s.MergeQuestionState(ctx, "q1", exam.StateUpdate{Feedback: exam.String("feedback")})
	if err != nil {
		t.Fatal(err)
	}

	if merged.ModelAnswer != "answer" || merged.Feedback != "feedback" {
		t.Errorf("merge lost data: %+v", merged)
	}

	// Round-trip through the database.
	state, err := s.QuestionState(ctx, "q1")
	if err != nil {
		t.Fatal(err)
	}
	if state.ModelAnswer != "answer" || state.Feedback != "feedback" {
		t.Errorf("stored state wrong: %+v", state)
	}
}

func TestMergeQuestionStateClozeRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ex := &exam.ClozeExercise{
		Text:   "Demand-pull [BLANK_1].",
		Blanks: []exam.ClozeBlank{{ID: 1, Original: "inflation", Hint: "AO1"}},
	}
	if _, err := s.MergeQuestionState(ctx, "q1", exam.StateUpdate{Cloze: ex}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.MergeQuestionState(ctx, "q1", exam.StateUpdate{
		ClozeFeedback: map[int]exam.ClozeFeedback{1: {Score: 4, Comment: "close"}},
	}); err != nil {
		t.Fatal(err)
	}

	state, err := s.QuestionState(ctx, "q1")
	if err != nil {
		t.Fatal(err)
	}
	if state.Cloze == nil || len(state.Cloze.Blanks) != 1 {
		t.Fatalf("cloze lost: %+v", state)
	}
	if state.ClozeFeedback[1].Score != 4 {
		t.Errorf("feedback lost: %+v", state.ClozeFeedback)
	}
}

func TestResetQuestionState(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.MergeQuestionState(ctx, "q1", exam.StateUpdate{Draft: exam.String("draft")}); err != nil {
		t.Fatal(err)
	}
	if err := s.ResetQuestionState(ctx, "q1"); err != nil {
		t.Fatal(err)
	}

	state, err := s.QuestionState(ctx, "q1")
	if err != nil {
		t.Fatal(err)
	}
	if state.Draft != "" {
		t.Errorf("state survived reset: %+v", state)
	}
}

func TestChapterAnalysisReplacement(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := exam.ChapterAnalysis{
		Chapter:       "The macroeconomy",
		GeneratedAt:   time.Now().UTC(),
		QuestionCount: 3,
		Knowledge:     []exam.AnalysisPoint{{Point: "old point", Sources: []string{"a"}}},
	}
	if err := s.SaveChapterAnalysis(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := first
	second.Knowledge = []exam.AnalysisPoint{{Point: "new point", Sources: []string{"b"}}}
	second.QuestionCount = 4
	if err := s.SaveChapterAnalysis(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.ChapterAnalysis(ctx, "The macroeconomy")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("analysis missing")
	}
	if got.QuestionCount != 4 || len(got.Knowledge) != 1 || got.Knowledge[0].Point != "new point" {
		t.Errorf("old analysis not fully replaced: %+v", got)
	}

	all, err := s.ListChapterAnalyses(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("expected one stored analysis, got %d", len(all))
	}
}

func TestChapterAnalysisAbsent(t *testing.T) {
	s := openTestStore(t)

	got, err := s.ChapterAnalysis(context.Background(), "nothing here")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	for i, purpose := range []string{"model-answer", "grade-essay", "model-answer"} {
		err := repo.AppendLLMEvent(ctx, LLMEventData{
			Provider:     "gemini",
			Model:        "gemini-2.0-flash",
			Purpose:      purpose,
			InputTokens:  100 + i,
			OutputTokens: 200,
			Success:      true,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	events, err := s.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events", len(events))
	}
	// Newest first.
	if events[0].InputTokens != 102 {
		t.Errorf("order wrong: first event %+v", events[0])
	}

	filtered, err := s.QueryLLMEvents(ctx, QueryOpts{Purpose: "grade-essay"})
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 || filtered[0].Purpose != "grade-essay" {
		t.Errorf("purpose filter wrong: %+v", filtered)
	}

	e, err := s.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if e == nil || e.Model != "gemini-2.0-flash" {
		t.Errorf("GetLLMEvent = %+v", e)
	}

	missing, err := s.GetLLMEvent(ctx, 999999)
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Error("expected nil for unknown event id")
	}
}

func TestLLMUsageAggregation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	events := []LLMEventData{
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "model-answer", InputTokens: 100, OutputTokens: 50, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "model-answer", InputTokens: 200, OutputTokens: 100, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "grade-essay", InputTokens: 10, OutputTokens: 5, Success: false},
	}
	for _, e := range events {
		if err := repo.AppendLLMEvent(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	byPurpose, err := s.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(byPurpose) != 1 {
		t.Fatalf("failed calls should be excluded: %+v", byPurpose)
	}
	if byPurpose[0].Calls != 2 || byPurpose[0].InputTokens != 300 {
		t.Errorf("aggregation wrong: %+v", byPurpose[0])
	}

	byModel, err := s.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(byModel) != 1 || byModel[0].OutputTokens != 150 {
		t.Errorf("model aggregation wrong: %+v", byModel)
	}
}

func TestResetAllKeepsEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveQuestion(ctx, exam.Question{ID: "q1", Text: "t"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.MergeQuestionState(ctx, "q1", exam.StateUpdate{Draft: exam.String("d")}); err != nil {
		t.Fatal(err)
	}
	if err := s.EventRepo().AppendLLMEvent(ctx, LLMEventData{Provider: "mock", Model: "mock", Purpose: "test"}); err != nil {
		t.Fatal(err)
	}

	if err := s.ResetAll(ctx); err != nil {
		t.Fatal(err)
	}

	edited, err := s.ListEdited(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(edited) != 0 {
		t.Error("edits survived reset")
	}

	events, err := s.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Error("audit events should survive reset")
	}
}
