package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/priyam/econcoach/internal/coach"
	"github.com/priyam/econcoach/internal/exam"
	"github.com/priyam/econcoach/internal/llm"
	"github.com/priyam/econcoach/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store *store.Store
}

// NewHandler creates the API handler.
func NewHandler(st *store.Store) *Handler {
	return &Handler{store: st}
}

// Routes registers all API routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/questions", h.handleListQuestions)
	r.Post("/questions", h.handleSaveQuestion)
	r.Put("/questions/{id}", h.handleSaveQuestion)
	r.Delete("/questions/{id}", h.handleDeleteQuestion)
	r.Post("/questions/{id}/restore", h.handleRestoreQuestion)

	r.Get("/state/{id}", h.handleGetState)

	// POST generates (and stores) an artifact; GET serves the stored one.
	r.Post("/questions/{id}/model-answer", h.handleModelAnswer)
	r.Get("/questions/{id}/model-answer", h.stateArtifact(func(s exam.QuestionState) (any, bool) {
		return map[string]string{"modelAnswer": s.ModelAnswer}, s.ModelAnswer != ""
	}))
	r.Post("/questions/{id}/grade", h.handleGrade)
	r.Get("/questions/{id}/grade", h.stateArtifact(func(s exam.QuestionState) (any, bool) {
		return map[string]string{"essay": s.Essay, "feedback": s.Feedback}, s.Feedback != ""
	}))
	r.Post("/questions/{id}/cloze", h.handleGenerateCloze)
	r.Get("/questions/{id}/cloze", h.stateArtifact(func(s exam.QuestionState) (any, bool) {
		return s.Cloze, s.Cloze != nil
	}))
	r.Post("/questions/{id}/cloze/grade", h.handleGradeCloze)
	r.Get("/questions/{id}/cloze/grade", h.stateArtifact(func(s exam.QuestionState) (any, bool) {
		return s.ClozeFeedback, len(s.ClozeFeedback) > 0
	}))
	r.Post("/questions/{id}/coach", h.handleCoach)
	r.Post("/questions/{id}/improve", h.handleImprove)
	r.Post("/deconstruct", h.handleDeconstruct)

	r.Get("/chapters", h.handleListChapters)
	r.Get("/chapters/{chapter}/analysis", h.handleGetAnalysis)
	r.Post("/chapters/{chapter}/analysis", h.handleAnalyzeChapter)
}

// service resolves the LLM provider and builds a coach service. The
// credential is re-resolved on every call so a key exported after the
// server started is picked up without a restart.
func (h *Handler) service(ctx context.Context) (*coach.Service, error) {
	provider, err := llm.NewProviderFromEnv(ctx, h.store.EventRepo())
	if err != nil {
		return nil, err
	}
	return coach.New(provider, h.store, coach.DefaultConfig()), nil
}

// question loads one catalog entry by id, writing the error response
// itself when the id is unknown.
func (h *Handler) question(w http.ResponseWriter, r *http.Request) (exam.Question, bool) {
	id := chi.URLParam(r, "id")
	catalog, err := h.store.EffectiveCatalog(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return exam.Question{}, false
	}
	q, ok := exam.FindQuestion(catalog, id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown question id: "+id)
		return exam.Question{}, false
	}
	return q, true
}

// stateArtifact builds a GET handler serving one stored artifact out of a
// question's work state, or 404 when it has not been generated yet.
func (h *Handler) stateArtifact(pick func(exam.QuestionState) (any, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := h.question(w, r)
		if !ok {
			return
		}
		state, err := h.store.QuestionState(r.Context(), q.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		artifact, ok := pick(state)
		if !ok {
			writeError(w, http.StatusNotFound, "not generated yet for question "+q.ID)
			return
		}
		writeJSON(w, http.StatusOK, artifact)
	}
}

func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.store.EffectiveCatalog(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *Handler) handleSaveQuestion(w http.ResponseWriter, r *http.Request) {
	var q exam.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid question payload: "+err.Error())
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		q.ID = id
	}
	if q.ID == "" {
		writeError(w, http.StatusBadRequest, "question id is required")
		return
	}
	if err := h.store.SaveQuestion(r.Context(), q); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.MarkDeleted(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRestoreQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Restore(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.QuestionState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) handleModelAnswer(w http.ResponseWriter, r *http.Request) {
	q, ok := h.question(w, r)
	if !ok {
		return
	}
	svc, err := h.service(r.Context())
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	answer, err := svc.ModelAnswer(r.Context(), q)
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"modelAnswer": answer})
}

type gradeRequest struct {
	Essay string `json:"essay"`
	// Images are data URIs or bare base64, ordered pages of one answer.
	Images []string `json:"images"`
}

func (h *Handler) handleGrade(w http.ResponseWriter, r *http.Request) {
	q, ok := h.question(w, r)
	if !ok {
		return
	}

	var req gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid grade payload: "+err.Error())
		return
	}
	if req.Essay == "" && len(req.Images) == 0 {
		writeError(w, http.StatusBadRequest, "an essay or at least one image is required")
		return
	}

	var pages []llm.Attachment
	for _, img := range req.Images {
		att, ok := llm.AttachmentFromDataURI(img)
		if !ok {
			writeError(w, http.StatusBadRequest, "image is not valid base64")
			return
		}
		pages = append(pages, att)
	}

	svc, err := h.service(r.Context())
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	feedback, err := svc.GradeEssay(r.Context(), q, req.Essay, pages)
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"feedback": feedback})
}

func (h *Handler) handleCoach(w http.ResponseWriter, r *http.Request) {
	q, ok := h.question(w, r)
	if !ok {
		return
	}

	var req struct {
		Draft string `json:"draft"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid coach payload: "+err.Error())
		return
	}

	svc, err := h.service(r.Context())
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	result, err := svc.CoachDraft(r.Context(), q, req.Draft)
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGenerateCloze(w http.ResponseWriter, r *http.Request) {
	q, ok := h.question(w, r)
	if !ok {
		return
	}

	state, err := h.store.QuestionState(r.Context(), q.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if state.ModelAnswer == "" {
		writeError(w, http.StatusBadRequest, "generate a model answer first")
		return
	}

	svc, err := h.service(r.Context())
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	ex, err := svc.GenerateCloze(r.Context(), q, state.ModelAnswer)
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	if ex == nil {
		writeError(w, http.StatusBadGateway, "the model produced an unusable exercise; try again")
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (h *Handler) handleGradeCloze(w http.ResponseWriter, r *http.Request) {
	q, ok := h.question(w, r)
	if !ok {
		return
	}

	var req struct {
		Answers map[int]string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid cloze grade payload: "+err.Error())
		return
	}

	state, err := h.store.QuestionState(r.Context(), q.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if state.Cloze == nil {
		writeError(w, http.StatusBadRequest, "no cloze exercise exists for this question")
		return
	}

	svc, err := h.service(r.Context())
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	feedback, err := svc.GradeCloze(r.Context(), q.ID, state.Cloze.Blanks, req.Answers)
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedback)
}

func (h *Handler) handleImprove(w http.ResponseWriter, r *http.Request) {
	q, ok := h.question(w, r)
	if !ok {
		return
	}

	var req struct {
		Snippet string `json:"snippet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Snippet == "" {
		writeError(w, http.StatusBadRequest, "a snippet is required")
		return
	}

	svc, err := h.service(r.Context())
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	result, err := svc.ImproveSnippet(r.Context(), q, req.Snippet)
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDeconstruct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID string `json:"questionId"`
		Text       string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "question text is required")
		return
	}

	svc, err := h.service(r.Context())
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	analysis, err := svc.Deconstruct(r.Context(), req.QuestionID, req.Text)
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deconstruction": analysis})
}

func (h *Handler) handleListChapters(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.store.EffectiveCatalog(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, exam.Chapters(catalog))
}

func (h *Handler) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.store.ChapterAnalysis(r.Context(), chi.URLParam(r, "chapter"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if analysis == nil {
		writeError(w, http.StatusNotFound, "no analysis computed for this chapter")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *Handler) handleAnalyzeChapter(w http.ResponseWriter, r *http.Request) {
	chapter := chi.URLParam(r, "chapter")

	catalog, err := h.store.EffectiveCatalog(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	questions := exam.ByChapter(catalog, chapter)
	if len(questions) == 0 {
		writeError(w, http.StatusNotFound, "no questions in chapter: "+chapter)
		return
	}

	svc, err := h.service(r.Context())
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	analysis, err := svc.AnalyzeChapter(r.Context(), chapter, questions)
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	if analysis == nil {
		writeError(w, http.StatusBadGateway, "the model produced an unusable analysis; try again")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeGenerationError maps LLM error kinds to HTTP responses: a missing
// credential is a 503 carrying the configuration instruction; everything
// else from the provider is a 502 with the generic apology.
func writeGenerationError(w http.ResponseWriter, err error) {
	var notCfg *llm.ErrNotConfigured
	if errors.As(err, &notCfg) {
		writeError(w, http.StatusServiceUnavailable, coach.UserMessage(err))
		return
	}
	slog.Error("generation failed", "error", err)
	writeError(w, http.StatusBadGateway, coach.UserMessage(err))
}
