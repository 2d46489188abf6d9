package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LLMEventData captures one LLM API call for the audit log.
type LLMEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored event row.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMEventData
}

// EventRepo provides append access to LLM request events. The llm package
// depends on this interface rather than on *Store so tests can substitute
// a recorder.
type EventRepo interface {
	AppendLLMEvent(ctx context.Context, data LLMEventData) error
}

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit   int    // max results (0 = default 50)
	Purpose string // filter by purpose ("" = all)
}

// EventRepo returns the EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &sqlEventRepo{db: s.db}
}

type sqlEventRepo struct {
	db *sql.DB
}

func (r *sqlEventRepo) AppendLLMEvent(ctx context.Context, data LLMEventData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO llm_events
			(timestamp, provider, model, purpose, input_tokens, output_tokens,
			 latency_ms, success, error_message, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), data.Provider, data.Model, data.Purpose,
		data.InputTokens, data.OutputTokens, data.LatencyMs,
		boolToInt(data.Success), data.ErrorMessage, data.RequestBody, data.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("append LLM event: %w", err)
	}
	return nil
}

// QueryLLMEvents returns recent events, newest first.
func (s *Store) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, timestamp, provider, model, purpose, input_tokens,
		       output_tokens, latency_ms, success, error_message,
		       request_body, response_body
		FROM llm_events`
	var args []any
	if opts.Purpose != "" {
		query += ` WHERE purpose = ?`
		args = append(args, opts.Purpose)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		var e LLMEvent
		var success int
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Provider, &e.Model,
			&e.Purpose, &e.InputTokens, &e.OutputTokens, &e.LatencyMs,
			&success, &e.ErrorMessage, &e.RequestBody, &e.ResponseBody); err != nil {
			return nil, err
		}
		e.Success = success != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetLLMEvent loads one event by id, or (nil, nil) if absent.
func (s *Store) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, provider, model, purpose, input_tokens,
		       output_tokens, latency_ms, success, error_message,
		       request_body, response_body
		FROM llm_events WHERE id = ?`, id)

	var e LLMEvent
	var success int
	err := row.Scan(&e.ID, &e.Timestamp, &e.Provider, &e.Model,
		&e.Purpose, &e.InputTokens, &e.OutputTokens, &e.LatencyMs,
		&success, &e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	e.Success = success != 0
	return &e, nil
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// LLMUsageByPurpose returns per-purpose token totals for successful calls.
func (s *Store) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT purpose, COUNT(*), SUM(input_tokens), SUM(output_tokens),
		       CAST(AVG(latency_ms) AS INTEGER)
		FROM llm_events
		WHERE success = 1
		GROUP BY purpose
		ORDER BY purpose`)
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []PurposeUsage
	for rows.Next() {
		var u PurposeUsage
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// LLMUsageByModel returns per-model token totals for successful calls.
func (s *Store) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT model, COUNT(*), SUM(input_tokens), SUM(output_tokens)
		FROM llm_events
		WHERE success = 1
		GROUP BY model
		ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
