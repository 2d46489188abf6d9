package exam

// StateUpdate is a partial update of a QuestionState. Nil fields are left
// untouched by MergeState, so sequential merges of disjoint updates never
// lose data.
type StateUpdate struct {
	ModelAnswer    *string
	Deconstruction *string
	Essay          *string
	Feedback       *string
	Draft          *string
	Cloze          *ClozeExercise
	ClozeFeedback  map[int]ClozeFeedback
}

// MergeState applies a shallow merge of upd into state and returns the
// result. The zero QuestionState is a valid starting point for a question
// that has no prior work.
func MergeState(state QuestionState, upd StateUpdate) QuestionState {
	if upd.ModelAnswer != nil {
		state.ModelAnswer = *upd.ModelAnswer
	}
	if upd.Deconstruction != nil {
		state.Deconstruction = *upd.Deconstruction
	}
	if upd.Essay != nil {
		state.Essay = *upd.Essay
	}
	if upd.Feedback != nil {
		state.Feedback = *upd.Feedback
	}
	if upd.Draft != nil {
		state.Draft = *upd.Draft
	}
	if upd.Cloze != nil {
		state.Cloze = upd.Cloze
		// A fresh exercise invalidates feedback for the old one.
		state.ClozeFeedback = nil
	}
	if upd.ClozeFeedback != nil {
		state.ClozeFeedback = upd.ClozeFeedback
	}
	return state
}

// String returns a *string for use in StateUpdate fields.
func String(s string) *string { return &s }
