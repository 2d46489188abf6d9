package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/priyam/econcoach/internal/exam"
)

// SaveQuestion inserts or replaces a user-added or user-edited question.
// New ids are appended after existing entries; replacing an id keeps its
// position.
func (s *Store) SaveQuestion(ctx context.Context, q exam.Question) error {
	if q.ID == "" {
		return fmt.Errorf("question id is required")
	}

	doc, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode question %s: %w", q.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO custom_questions (id, position, doc)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM custom_questions), ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`,
		q.ID, string(doc),
	)
	if err != nil {
		return fmt.Errorf("save question %s: %w", q.ID, err)
	}
	return nil
}

// ListEdited returns the user-added/edited questions in storage order.
func (s *Store) ListEdited(ctx context.Context) ([]exam.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM custom_questions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list edited questions: %w", err)
	}
	defer rows.Close()

	var out []exam.Question
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var q exam.Question
		if err := json.Unmarshal([]byte(doc), &q); err != nil {
			return nil, fmt.Errorf("decode question document: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// MarkDeleted records an id in the soft-delete set. Deleting an already
// deleted id is a no-op.
func (s *Store) MarkDeleted(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO deleted_questions (id) VALUES (?)`, id)
	if err != nil {
		return fmt.Errorf("mark question %s deleted: %w", id, err)
	}
	return nil
}

// Restore removes an id from the soft-delete set, making the base or
// edited record visible again.
func (s *Store) Restore(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM deleted_questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("restore question %s: %w", id, err)
	}
	return nil
}

// DeletedIDs returns the soft-delete set.
func (s *Store) DeletedIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM deleted_questions`)
	if err != nil {
		return nil, fmt.Errorf("list deleted ids: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}
