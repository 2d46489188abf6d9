// Package batch runs one generation task across many questions, strictly
// sequentially, with a fixed pause between requests to stay under external
// rate limits.
package batch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/priyam/econcoach/internal/exam"
)

// DefaultDelay is the pause between consecutive requests.
const DefaultDelay = 3 * time.Second

// ItemError records one skipped item.
type ItemError struct {
	QuestionID string
	Err        error
}

// Summary reports the outcome of a batch run.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   []ItemError
}

func (s Summary) String() string {
	return fmt.Sprintf("batch complete: %d/%d succeeded, %d skipped",
		s.Succeeded, s.Total, len(s.Skipped))
}

// Runner executes an operation over a question list.
type Runner struct {
	// Delay between items. Zero means DefaultDelay.
	Delay time.Duration

	// Logf receives progress lines. Nil logs to stderr.
	Logf func(format string, args ...any)
}

// Run applies op to every question in order. A failed item is logged and
// skipped; there is no per-item retry and no backoff, so a rate-limited item
// stays skipped until the next full run. Cancellation is honored between
// items only; an in-flight request runs to completion.
func (r Runner) Run(ctx context.Context, questions []exam.Question, op func(ctx context.Context, q exam.Question) error) Summary {
	delay := r.Delay
	if delay == 0 {
		delay = DefaultDelay
	}
	logf := r.Logf
	if logf == nil {
		logf = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}

	summary := Summary{Total: len(questions)}

	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			logf("batch cancelled after %d/%d items", i, len(questions))
			return summary
		}

		if err := op(ctx, q); err != nil {
			logf("skipping %s: %v", q.ID, err)
			summary.Skipped = append(summary.Skipped, ItemError{QuestionID: q.ID, Err: err})
		} else {
			summary.Succeeded++
		}

		// Fixed spacing between requests; nothing to wait for after the
		// final item.
		if i < len(questions)-1 {
			select {
			case <-ctx.Done():
				logf("batch cancelled after %d/%d items", i+1, len(questions))
				return summary
			case <-time.After(delay):
			}
		}
	}

	return summary
}
