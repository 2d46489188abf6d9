package coach

import (
	"context"
	"fmt"

	"github.com/priyam/econcoach/internal/exam"
	"github.com/priyam/econcoach/internal/llm"
)

// StateWriter is the slice of the store the service needs to persist
// generated artifacts. May be nil, in which case results are returned but
// not recorded.
type StateWriter interface {
	MergeQuestionState(ctx context.Context, questionID string, upd exam.StateUpdate) (exam.QuestionState, error)
	SaveChapterAnalysis(ctx context.Context, a exam.ChapterAnalysis) error
}

// Service orchestrates every generation task: build prompt, call the
// provider, normalize the response, and merge the artifact into the
// per-question state.
type Service struct {
	provider llm.Provider
	states   StateWriter
	cfg      Config
}

// New creates a coach service. states may be nil for callers that handle
// persistence themselves.
func New(provider llm.Provider, states StateWriter, cfg Config) *Service {
	return &Service{provider: provider, states: states, cfg: cfg}
}

// ModelAnswer generates a full model answer for a question and records it.
func (s *Service) ModelAnswer(ctx context.Context, q exam.Question) (string, error) {
	ctx = llm.WithPurpose(ctx, "model-answer")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: modelAnswerSystem,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildModelAnswerPrompt(q)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("model answer generation: %w", err)
	}

	answer := normalizeText(resp.Content)
	if err := s.merge(ctx, q.ID, exam.StateUpdate{ModelAnswer: exam.String(answer)}); err != nil {
		return "", err
	}
	return answer, nil
}

// Deconstruct analyzes a bare question string. No catalog entry is needed,
// so nothing is persisted unless questionID is non-empty.
func (s *Service) Deconstruct(ctx context.Context, questionID, questionText string) (string, error) {
	ctx = llm.WithPurpose(ctx, "deconstruct")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: deconstructSystem,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildDeconstructPrompt(questionText)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("question deconstruction: %w", err)
	}

	analysis := normalizeText(resp.Content)
	if questionID != "" {
		if err := s.merge(ctx, questionID, exam.StateUpdate{Deconstruction: exam.String(analysis)}); err != nil {
			return "", err
		}
	}
	return analysis, nil
}

// GradeEssay marks a submitted essay. pages are ordered scans of a
// handwritten answer and may accompany or replace the typed text.
func (s *Service) GradeEssay(ctx context.Context, q exam.Question, essay string, pages []llm.Attachment) (string, error) {
	ctx = llm.WithPurpose(ctx, "grade-essay")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: gradeSystem,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildGradePrompt(q, essay, len(pages))},
		},
		Attachments: pages,
		MaxTokens:   s.cfg.MaxTokens,
		// Marking must be reproducible.
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("essay grading: %w", err)
	}

	feedback := normalizeText(resp.Content)
	upd := exam.StateUpdate{Feedback: exam.String(feedback)}
	if essay != "" {
		upd.Essay = exam.String(essay)
	}
	if err := s.merge(ctx, q.ID, upd); err != nil {
		return "", err
	}
	return feedback, nil
}

// CoachDraft scores a partial draft per assessment objective and returns
// next-step advice. Scores default to zero when the model's reply is
// unusable; this call never fails on malformed content.
func (s *Service) CoachDraft(ctx context.Context, q exam.Question, draft string) (CoachResult, error) {
	ctx = llm.WithPurpose(ctx, "coach-draft")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: coachSystem,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildCoachPrompt(q, draft)},
		},
		Schema:    CoachSchema,
		MaxTokens: 1024,
	})
	if err != nil {
		return CoachResult{}, fmt.Errorf("draft coaching: %w", err)
	}

	result := normalizeCoach(resp.Content)
	if err := s.merge(ctx, q.ID, exam.StateUpdate{Draft: exam.String(draft)}); err != nil {
		return CoachResult{}, err
	}
	return result, nil
}

// GenerateCloze derives a fill-in-the-blank exercise from a model answer.
// Returns (nil, nil) when the model produced an unusable exercise; callers
// treat that as "try again", not as a failure.
func (s *Service) GenerateCloze(ctx context.Context, q exam.Question, modelAnswer string) (*exam.ClozeExercise, error) {
	ctx = llm.WithPurpose(ctx, "cloze-gen")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: clozeSystem,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildClozePrompt(q, modelAnswer)},
		},
		Schema:    ClozeSchema,
		MaxTokens: s.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("cloze generation: %w", err)
	}

	ex := normalizeCloze(resp.Content)
	if ex == nil {
		return nil, nil
	}
	if err := s.merge(ctx, q.ID, exam.StateUpdate{Cloze: ex}); err != nil {
		return nil, err
	}
	return ex, nil
}

// GradeCloze batch-grades student answers against the exercise's blanks.
// The result map only ever contains ids from the blank list.
func (s *Service) GradeCloze(ctx context.Context, questionID string, blanks []exam.ClozeBlank, answers map[int]string) (map[int]exam.ClozeFeedback, error) {
	ctx = llm.WithPurpose(ctx, "cloze-grade")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: clozeGradeSystem,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildClozeGradePrompt(blanks, answers)},
		},
		Schema:    ClozeFeedbackSchema,
		MaxTokens: 2048,
	})
	if err != nil {
		return nil, fmt.Errorf("cloze grading: %w", err)
	}

	feedback := normalizeClozeFeedback(resp.Content, blanks)
	if questionID != "" {
		if err := s.merge(ctx, questionID, exam.StateUpdate{ClozeFeedback: feedback}); err != nil {
			return nil, err
		}
	}
	return feedback, nil
}

// AnalyzeChapter aggregates mark-scheme insight across every question of a
// chapter. The stored analysis is a full replacement for the chapter's
// previous entry. Returns (nil, nil) on an unusable response.
func (s *Service) AnalyzeChapter(ctx context.Context, chapter string, questions []exam.Question) (*exam.ChapterAnalysis, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("chapter %q has no questions to analyze", chapter)
	}

	ctx = llm.WithPurpose(ctx, "chapter-analysis")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: analysisSystem,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildAnalysisPrompt(chapter, questions)},
		},
		Schema:    AnalysisSchema,
		MaxTokens: s.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chapter analysis: %w", err)
	}

	analysis := normalizeAnalysis(resp.Content, chapter, len(questions))
	if analysis == nil {
		return nil, nil
	}
	if s.states != nil {
		if err := s.states.SaveChapterAnalysis(ctx, *analysis); err != nil {
			return nil, fmt.Errorf("persist chapter analysis: %w", err)
		}
	}
	return analysis, nil
}

// ImproveSnippet rewrites one sentence or paragraph to examiner standard.
func (s *Service) ImproveSnippet(ctx context.Context, q exam.Question, snippet string) (ImproveResult, error) {
	ctx = llm.WithPurpose(ctx, "improve-snippet")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: improveSystem,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildImprovePrompt(q, snippet)},
		},
		Schema:    ImproveSchema,
		MaxTokens: 1024,
	})
	if err != nil {
		return ImproveResult{}, fmt.Errorf("snippet improvement: %w", err)
	}

	return normalizeImprove(resp.Content), nil
}

func (s *Service) merge(ctx context.Context, questionID string, upd exam.StateUpdate) error {
	if s.states == nil || questionID == "" {
		return nil
	}
	if _, err := s.states.MergeQuestionState(ctx, questionID, upd); err != nil {
		return fmt.Errorf("persist question state: %w", err)
	}
	return nil
}
