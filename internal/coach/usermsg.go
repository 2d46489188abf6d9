package coach

import (
	"errors"

	"github.com/priyam/econcoach/internal/llm"
)

// Messages shown in place of generated content when a call fails. Failure
// kind is carried by the error type, never inferred from message text.
const (
	// MsgNotConfigured instructs the user how to enable AI features.
	MsgNotConfigured = "AI features are not configured. Set ECONCOACH_GEMINI_API_KEY (or OPENAI, ANTHROPIC, OPENROUTER) and try again."

	// MsgRateLimited covers throttling after retries are exhausted.
	MsgRateLimited = "Sorry, the AI service is currently rate limited. Please wait a moment and try again."

	// MsgUnavailable covers every other transport or model failure.
	MsgUnavailable = "Sorry, I couldn't generate a response. Please try again."
)

// UserMessage maps an error from any generation entry point to the string
// shown to the user. Returns "" for a nil error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var notCfg *llm.ErrNotConfigured
	if errors.As(err, &notCfg) {
		return MsgNotConfigured
	}

	var rl *llm.ErrRateLimit
	if errors.As(err, &rl) {
		return MsgRateLimited
	}

	return MsgUnavailable
}
