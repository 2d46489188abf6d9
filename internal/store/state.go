package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/priyam/econcoach/internal/exam"
)

// QuestionState loads the work state for a question. A question with no
// prior work yields the zero state, not an error.
func (s *Store) QuestionState(ctx context.Context, questionID string) (exam.QuestionState, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM question_state WHERE question_id = ?`, questionID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return exam.QuestionState{}, nil
	}
	if err != nil {
		return exam.QuestionState{}, fmt.Errorf("load state for %s: %w", questionID, err)
	}

	var state exam.QuestionState
	if err := json.Unmarshal([]byte(doc), &state); err != nil {
		return exam.QuestionState{}, fmt.Errorf("decode state for %s: %w", questionID, err)
	}
	return state, nil
}

// MergeQuestionState applies a partial update to a question's state and
// writes the merged document back. The record is created lazily on first
// write.
func (s *Store) MergeQuestionState(ctx context.Context, questionID string, upd exam.StateUpdate) (exam.QuestionState, error) {
	state, err := s.QuestionState(ctx, questionID)
	if err != nil {
		return exam.QuestionState{}, err
	}

	merged := exam.MergeState(state, upd)

	doc, err := json.Marshal(merged)
	if err != nil {
		return exam.QuestionState{}, fmt.Errorf("encode state for %s: %w", questionID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO question_state (question_id, doc) VALUES (?, ?)
		ON CONFLICT(question_id) DO UPDATE SET doc = excluded.doc`,
		questionID, string(doc),
	)
	if err != nil {
		return exam.QuestionState{}, fmt.Errorf("save state for %s: %w", questionID, err)
	}
	return merged, nil
}

// ResetQuestionState removes all stored work for a question.
func (s *Store) ResetQuestionState(ctx context.Context, questionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM question_state WHERE question_id = ?`, questionID)
	if err != nil {
		return fmt.Errorf("reset state for %s: %w", questionID, err)
	}
	return nil
}

// ResetAll clears every mutable store: edits, deletions, work state, and
// chapter analyses. LLM events are kept for audit.
func (s *Store) ResetAll(ctx context.Context) error {
	for _, table := range []string{
		"custom_questions", "deleted_questions", "question_state", "chapter_analyses",
	} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
