package coach

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/priyam/econcoach/internal/exam"
)

// The normalizers in this file are the only place untrusted model output is
// converted into domain values. They never return an error or panic on
// malformed input: JSON that does not parse is treated as an empty object,
// every expected field gets an explicit default, and the cloze and analysis
// normalizers signal an unusable payload with a nil result.

// noResponse stands in for an empty plain-text model reply.
const noResponse = "(no response)"

// normalizeText passes prose responses through verbatim, substituting the
// fallback literal only when the reply is empty.
func normalizeText(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	// Schemaless responses sometimes arrive as a JSON-encoded string.
	var unquoted string
	if err := json.Unmarshal(raw, &unquoted); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	if s == "" {
		return noResponse
	}
	return s
}

// CoachResult is the normalized real-time coaching payload.
type CoachResult struct {
	AO1    int    `json:"ao1"`
	AO2    int    `json:"ao2"`
	AO3    int    `json:"ao3"`
	Advice string `json:"advice"`
}

func normalizeCoach(raw json.RawMessage) CoachResult {
	var out CoachResult
	_ = json.Unmarshal(raw, &out)
	out.AO1 = clamp(out.AO1, 0, 10)
	out.AO2 = clamp(out.AO2, 0, 10)
	out.AO3 = clamp(out.AO3, 0, 10)
	return out
}

// ImproveResult is the normalized snippet-improvement payload.
type ImproveResult struct {
	Improved string `json:"improved"`
	Reason   string `json:"reason"`
}

func normalizeImprove(raw json.RawMessage) ImproveResult {
	var out ImproveResult
	_ = json.Unmarshal(raw, &out)
	return out
}

// normalizeCloze converts a cloze-generation response into a validated
// exercise. Returns nil when the payload is unusable: no text, no blanks
// with positive ids, or placeholder tokens that do not correspond 1:1 with
// the blank list.
func normalizeCloze(raw json.RawMessage) *exam.ClozeExercise {
	var out struct {
		Text   string `json:"text"`
		Blanks []struct {
			ID       int    `json:"id"`
			Original string `json:"original"`
			Hint     string `json:"hint"`
		} `json:"blanks"`
	}
	_ = json.Unmarshal(raw, &out)

	if strings.TrimSpace(out.Text) == "" {
		return nil
	}

	ex := &exam.ClozeExercise{Text: out.Text}
	for _, b := range out.Blanks {
		if b.ID <= 0 {
			continue
		}
		ex.Blanks = append(ex.Blanks, exam.ClozeBlank{
			ID:       b.ID,
			Original: b.Original,
			Hint:     b.Hint,
		})
	}
	if len(ex.Blanks) == 0 {
		return nil
	}

	if err := exam.ValidateCloze(*ex); err != nil {
		return nil
	}
	return ex
}

// normalizeClozeFeedback rebuilds the per-blank feedback map from a grading
// response. Items are keyed by their own id field; items with no usable id,
// an out-of-range score, or an id not present in the originating blank list
// are discarded rather than erred on. A missing feedback list yields an
// empty map.
func normalizeClozeFeedback(raw json.RawMessage, blanks []exam.ClozeBlank) map[int]exam.ClozeFeedback {
	var out struct {
		Feedback []struct {
			ID      int    `json:"id"`
			Score   int    `json:"score"`
			Comment string `json:"comment"`
		} `json:"feedback"`
	}
	_ = json.Unmarshal(raw, &out)

	known := make(map[int]bool, len(blanks))
	for _, b := range blanks {
		known[b.ID] = true
	}

	result := make(map[int]exam.ClozeFeedback)
	for _, item := range out.Feedback {
		if item.ID <= 0 || !known[item.ID] {
			continue
		}
		if item.Score < 1 || item.Score > 5 {
			continue
		}
		result[item.ID] = exam.ClozeFeedback{
			Score:   item.Score,
			Comment: item.Comment,
		}
	}
	return result
}

// normalizeAnalysis converts an aggregation response into a chapter
// analysis. Returns nil when the payload carries no points at all.
func normalizeAnalysis(raw json.RawMessage, chapter string, questionCount int) *exam.ChapterAnalysis {
	var out struct {
		Knowledge  []exam.AnalysisPoint  `json:"knowledge"`
		Analysis   []exam.AnalysisPoint  `json:"analysis"`
		Evaluation []exam.AnalysisPoint  `json:"evaluation"`
		Debates    []exam.DebateAnalysis `json:"debates"`
	}
	_ = json.Unmarshal(raw, &out)

	if len(out.Knowledge) == 0 && len(out.Analysis) == 0 &&
		len(out.Evaluation) == 0 && len(out.Debates) == 0 {
		return nil
	}

	return &exam.ChapterAnalysis{
		Chapter:       chapter,
		GeneratedAt:   time.Now().UTC(),
		QuestionCount: questionCount,
		Knowledge:     defaultPoints(out.Knowledge),
		Analysis:      defaultPoints(out.Analysis),
		Evaluation:    defaultPoints(out.Evaluation),
		Debates:       defaultDebates(out.Debates),
	}
}

// defaultPoints guarantees non-nil source lists and drops empty points.
func defaultPoints(points []exam.AnalysisPoint) []exam.AnalysisPoint {
	out := make([]exam.AnalysisPoint, 0, len(points))
	for _, p := range points {
		if strings.TrimSpace(p.Point) == "" {
			continue
		}
		if p.Sources == nil {
			p.Sources = []string{}
		}
		out = append(out, p)
	}
	return out
}

func defaultDebates(debates []exam.DebateAnalysis) []exam.DebateAnalysis {
	out := make([]exam.DebateAnalysis, 0, len(debates))
	for _, d := range debates {
		if strings.TrimSpace(d.Topic) == "" {
			continue
		}
		d.Supporting = defaultPoints(d.Supporting)
		d.Limiting = defaultPoints(d.Limiting)
		d.DependsOn = defaultPoints(d.DependsOn)
		out = append(out, d)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
