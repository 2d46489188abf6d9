package coach

import "github.com/priyam/econcoach/internal/llm"

// CoachSchema constrains real-time draft coaching responses.
var CoachSchema = &llm.Schema{
	Name:        "draft-coaching",
	Description: "Per-assessment-objective scores and next-step advice for a partial essay draft",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ao1": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     10,
				"description": "Knowledge and understanding shown so far, 0-10",
			},
			"ao2": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     10,
				"description": "Analysis shown so far, 0-10",
			},
			"ao3": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     10,
				"description": "Evaluation shown so far, 0-10",
			},
			"advice": map[string]any{
				"type":        "string",
				"description": "One concrete piece of advice for the next paragraph",
			},
		},
		"required":             []any{"ao1", "ao2", "ao3", "advice"},
		"additionalProperties": false,
	},
}

// ClozeSchema constrains cloze-exercise generation responses.
var ClozeSchema = &llm.Schema{
	Name:        "cloze-exercise",
	Description: "A fill-in-the-blank exercise derived from a model answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "The exercise text with one [BLANK_<id>] token per removed span",
			},
			"blanks": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "integer",
							"description": "Positive integer matching a [BLANK_<id>] token in the text",
						},
						"original": map[string]any{
							"type":        "string",
							"description": "The exact text that was removed",
						},
						"hint": map[string]any{
							"type":        "string",
							"description": "Assessment objective plus a short nudge",
						},
					},
					"required": []any{"id", "original", "hint"},
				},
			},
		},
		"required":             []any{"text", "blanks"},
		"additionalProperties": false,
	},
}

// ClozeFeedbackSchema constrains batch cloze-grading responses.
var ClozeFeedbackSchema = &llm.Schema{
	Name:        "cloze-feedback",
	Description: "Per-blank scores and comments for a graded cloze exercise",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"feedback": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "integer",
							"description": "The blank id this feedback refers to",
						},
						"score": map[string]any{
							"type":        "integer",
							"minimum":     1,
							"maximum":     5,
							"description": "1 wrong, 3 partial, 5 equivalent",
						},
						"comment": map[string]any{
							"type":        "string",
							"description": "One-sentence justification of the score",
						},
					},
					"required": []any{"id", "score", "comment"},
				},
			},
		},
		"required":             []any{"feedback"},
		"additionalProperties": false,
	},
}

// analysisPointDef is the shared shape of one extracted point.
var analysisPointDef = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"point": map[string]any{
			"type":        "string",
			"description": "The extracted point",
		},
		"sources": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Bracketed question references evidencing the point",
		},
	},
	"required": []any{"point", "sources"},
}

// AnalysisSchema constrains chapter-level mark-scheme aggregation responses.
var AnalysisSchema = &llm.Schema{
	Name:        "chapter-analysis",
	Description: "Recurring mark-scheme points and debates aggregated across one chapter",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"knowledge": map[string]any{
				"type":        "array",
				"items":       analysisPointDef,
				"description": "Recurring AO1 points",
			},
			"analysis": map[string]any{
				"type":        "array",
				"items":       analysisPointDef,
				"description": "Recurring AO2 chains of reasoning",
			},
			"evaluation": map[string]any{
				"type":        "array",
				"items":       analysisPointDef,
				"description": "Recurring AO3 judgement criteria",
			},
			"debates": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"topic": map[string]any{
							"type":        "string",
							"description": "Name of the recurring debate",
						},
						"supporting": map[string]any{"type": "array", "items": analysisPointDef},
						"limiting":   map[string]any{"type": "array", "items": analysisPointDef},
						"dependsOn":  map[string]any{"type": "array", "items": analysisPointDef},
					},
					"required": []any{"topic", "supporting", "limiting", "dependsOn"},
				},
			},
		},
		"required":             []any{"knowledge", "analysis", "evaluation", "debates"},
		"additionalProperties": false,
	},
}

// ImproveSchema constrains snippet-improvement responses.
var ImproveSchema = &llm.Schema{
	Name:        "snippet-improvement",
	Description: "An examiner-standard rewrite of one sentence or paragraph",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"improved": map[string]any{
				"type":        "string",
				"description": "The rewritten passage",
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "The most important reason the rewrite is better",
			},
		},
		"required":             []any{"improved", "reason"},
		"additionalProperties": false,
	},
}
