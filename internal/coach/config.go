package coach

// Config tunes generation for the coach service.
type Config struct {
	// MaxTokens bounds response length. Essays run long; the default
	// leaves room for a full 12-mark model answer.
	MaxTokens int

	// Temperature for prose tasks. Structured tasks (coaching scores,
	// cloze grading) always run at 0.
	Temperature float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}
