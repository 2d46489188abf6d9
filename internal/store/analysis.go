package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/priyam/econcoach/internal/exam"
)

// SaveChapterAnalysis stores an analysis, fully replacing any previous
// entry for the same chapter.
func (s *Store) SaveChapterAnalysis(ctx context.Context, a exam.ChapterAnalysis) error {
	if a.Chapter == "" {
		return fmt.Errorf("chapter is required")
	}

	doc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis for %q: %w", a.Chapter, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chapter_analyses (chapter, doc) VALUES (?, ?)
		ON CONFLICT(chapter) DO UPDATE SET doc = excluded.doc`,
		a.Chapter, string(doc),
	)
	if err != nil {
		return fmt.Errorf("save analysis for %q: %w", a.Chapter, err)
	}
	return nil
}

// ChapterAnalysis loads the stored analysis for a chapter, or (nil, nil)
// if none has been computed.
func (s *Store) ChapterAnalysis(ctx context.Context, chapter string) (*exam.ChapterAnalysis, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM chapter_analyses WHERE chapter = ?`, chapter).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load analysis for %q: %w", chapter, err)
	}

	var a exam.ChapterAnalysis
	if err := json.Unmarshal([]byte(doc), &a); err != nil {
		return nil, fmt.Errorf("decode analysis for %q: %w", chapter, err)
	}
	return &a, nil
}

// ListChapterAnalyses returns every stored analysis ordered by chapter.
func (s *Store) ListChapterAnalyses(ctx context.Context) ([]exam.ChapterAnalysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM chapter_analyses ORDER BY chapter`)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []exam.ChapterAnalysis
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var a exam.ChapterAnalysis
		if err := json.Unmarshal([]byte(doc), &a); err != nil {
			return nil, fmt.Errorf("decode analysis document: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
