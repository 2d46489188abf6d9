package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Provider is the core abstraction for LLM interaction.
// Consumers call Generate with a Request and receive structured JSON.
type Provider interface {
	// Generate sends a prompt to the LLM and returns a structured response.
	// The request's Schema field, when set, instructs the provider to return
	// JSON conforming to that schema. The response Content will be the
	// validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. For single-turn generation
	// (the common case in econcoach), this contains one user message.
	Messages []Message

	// Attachments are inline binary parts (scanned essay pages) appended
	// to the final user message. Multiple attachments are ordered pages
	// of one continuous answer.
	Attachments []Attachment

	// Schema is the JSON Schema the response must conform to.
	// When set, the provider uses its native structured output mechanism.
	// When nil, the response Content is raw text as json.RawMessage.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Attachment is one inline binary content part.
type Attachment struct {
	// MIME is the media type, e.g. "image/jpeg".
	MIME string

	// Data is the raw (decoded) bytes.
	Data []byte
}

// DefaultImageMIME is assumed when an attachment's media type cannot be
// determined.
const DefaultImageMIME = "image/jpeg"

// AttachmentFromDataURI builds an Attachment from either a data URI
// ("data:image/png;base64,....") or a bare base64 string. The MIME type is
// taken from the URI prefix when present, otherwise DefaultImageMIME.
// Returns false if the payload does not decode as base64.
func AttachmentFromDataURI(s string) (Attachment, bool) {
	mime := DefaultImageMIME
	payload := s

	if strings.HasPrefix(s, "data:") {
		rest := s[len("data:"):]
		marker := strings.Index(rest, ";base64,")
		if marker < 0 {
			return Attachment{}, false
		}
		if m := rest[:marker]; m != "" {
			mime = m
		}
		payload = rest[marker+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Attachment{}, false
	}
	return Attachment{MIME: mime, Data: data}, true
}

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema (used as tool name for Anthropic,
	// schema name for OpenAI). Kebab-case, e.g. "cloze-exercise".
	Name string

	// Description is a human-readable description of what this schema
	// represents. Sent to the LLM to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output. When a Schema was provided in the
	// request, this is the validated JSON object. When no Schema was
	// provided, this is the raw text response wrapped as a JSON string.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
