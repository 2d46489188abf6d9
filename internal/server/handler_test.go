package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/priyam/econcoach/internal/coach"
	"github.com/priyam/econcoach/internal/exam"
	"github.com/priyam/econcoach/internal/store"
)

func testRouter(t *testing.T) (*chi.Mux, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	r := chi.NewRouter()
	r.Route("/api", NewHandler(st).Routes)
	return r, st
}

// clearProviderEnv guarantees no provider can be resolved, so generation
// endpoints exercise the not-configured path.
func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"ECONCOACH_LLM_PROVIDER",
		"ECONCOACH_GEMINI_API_KEY", "ECONCOACH_OPENAI_API_KEY",
		"ECONCOACH_ANTHROPIC_API_KEY", "ECONCOACH_OPENROUTER_API_KEY",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListQuestions(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/questions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	var got []exam.Question
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(exam.BaseCatalog()) {
		t.Errorf("got %d questions", len(got))
	}
}

func TestQuestionLifecycle(t *testing.T) {
	r, _ := testRouter(t)

	// Add.
	w := doJSON(t, r, http.MethodPost, "/api/questions",
		`{"id": "custom-1", "text": "Explain opportunity cost.", "markScheme": "ms", "chapter": "Basic ideas", "maxMarks": 8}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add: status %d: %s", w.Code, w.Body.String())
	}

	// Edit via PUT; path id wins.
	w = doJSON(t, r, http.MethodPut, "/api/questions/custom-1",
		`{"id": "ignored", "text": "Edited text.", "markScheme": "ms", "chapter": "Basic ideas", "maxMarks": 8}`)
	if w.Code != http.StatusOK {
		t.Fatalf("edit: status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/questions", "")
	var catalog []exam.Question
	if err := json.Unmarshal(w.Body.Bytes(), &catalog); err != nil {
		t.Fatal(err)
	}
	q, ok := exam.FindQuestion(catalog, "custom-1")
	if !ok || q.Text != "Edited text." {
		t.Fatalf("edit not visible: %+v", q)
	}

	// Delete.
	if w = doJSON(t, r, http.MethodDelete, "/api/questions/custom-1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/questions", "")
	_ = json.Unmarshal(w.Body.Bytes(), &catalog)
	if _, ok := exam.FindQuestion(catalog, "custom-1"); ok {
		t.Fatal("deleted question still listed")
	}

	// Restore.
	if w = doJSON(t, r, http.MethodPost, "/api/questions/custom-1/restore", ""); w.Code != http.StatusNoContent {
		t.Fatalf("restore: status %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/questions", "")
	_ = json.Unmarshal(w.Body.Bytes(), &catalog)
	if _, ok := exam.FindQuestion(catalog, "custom-1"); !ok {
		t.Fatal("restored question missing")
	}
}

func TestSaveQuestionBadPayload(t *testing.T) {
	r, _ := testRouter(t)

	if w := doJSON(t, r, http.MethodPost, "/api/questions", `{broken`); w.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/questions", `{"text": "no id"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing id: status %d, want 400", w.Code)
	}
}

func TestGetStateEmptyQuestion(t *testing.T) {
	r, _ := testRouter(t)
	id := exam.BaseCatalog()[0].ID

	w := doJSON(t, r, http.MethodGet, "/api/state/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	var state exam.QuestionState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if state.ModelAnswer != "" {
		t.Errorf("expected zero state, got %+v", state)
	}
}

func TestGenerateUnknownQuestionIs404(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/questions/no-such-id/model-answer", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", w.Code)
	}
}

func TestGenerateNotConfiguredIs503(t *testing.T) {
	clearProviderEnv(t)
	r, _ := testRouter(t)
	id := exam.BaseCatalog()[0].ID

	w := doJSON(t, r, http.MethodPost, "/api/questions/"+id+"/model-answer", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503: %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != coach.MsgNotConfigured {
		t.Errorf("error = %q", body["error"])
	}
}

func TestGradeRequiresInput(t *testing.T) {
	clearProviderEnv(t)
	r, _ := testRouter(t)
	id := exam.BaseCatalog()[0].ID

	// Input validation runs before provider resolution, so this is a 400
	// even with no provider configured.
	w := doJSON(t, r, http.MethodPost, "/api/questions/"+id+"/grade", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/questions/"+id+"/grade", `{"images": ["!!bad!!"]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad image: status %d, want 400", w.Code)
	}
}

func TestClozeNeedsModelAnswerFirst(t *testing.T) {
	clearProviderEnv(t)
	r, _ := testRouter(t)
	id := exam.BaseCatalog()[0].ID

	w := doJSON(t, r, http.MethodPost, "/api/questions/"+id+"/cloze", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400 when no model answer exists", w.Code)
	}
}

func TestChapterAnalysisNotFound(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/chapters/Nothing%20here/analysis", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", w.Code)
	}
}

func TestListChapters(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/chapters", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	var chapters []string
	if err := json.Unmarshal(w.Body.Bytes(), &chapters); err != nil {
		t.Fatal(err)
	}
	if len(chapters) == 0 {
		t.Error("no chapters returned")
	}
}

func TestGetStoredArtifact(t *testing.T) {
	r, st := testRouter(t)
	id := exam.BaseCatalog()[0].ID

	// Nothing generated yet.
	w := doJSON(t, r, http.MethodGet, "/api/questions/"+id+"/model-answer", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404 before generation", w.Code)
	}

	if _, err := st.MergeQuestionState(context.Background(), id,
		exam.StateUpdate{ModelAnswer: exam.String("stored answer")}); err != nil {
		t.Fatal(err)
	}

	w = doJSON(t, r, http.MethodGet, "/api/questions/"+id+"/model-answer", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["modelAnswer"] != "stored answer" {
		t.Errorf("modelAnswer = %q", body["modelAnswer"])
	}
}

func TestDeconstructRequiresText(t *testing.T) {
	clearProviderEnv(t)
	r, _ := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/deconstruct", `{"text": ""}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", w.Code)
	}
}
