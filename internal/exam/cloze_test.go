package exam

import (
	"reflect"
	"testing"
)

func TestPlaceholderIDs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{"none", "plain prose with no blanks", []int{}},
		{"single", "fiscal [BLANK_1] policy", []int{1}},
		{"ordered", "[BLANK_2] then [BLANK_1] then [BLANK_3]", []int{2, 1, 3}},
		{"duplicate kept", "[BLANK_1] and [BLANK_1]", []int{1, 1}},
		{"malformed ignored", "[BLANK_] [BLANK_x] [BLANK_4]", []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlaceholderIDs(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PlaceholderIDs(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestValidateCloze(t *testing.T) {
	tests := []struct {
		name    string
		ex      ClozeExercise
		wantErr bool
	}{
		{
			name: "valid",
			ex: ClozeExercise{
				Text:   "Demand-pull [BLANK_1] occurs when [BLANK_2] exceeds capacity.",
				Blanks: []ClozeBlank{{ID: 1, Original: "inflation"}, {ID: 2, Original: "aggregate demand"}},
			},
		},
		{
			name: "token without blank",
			ex: ClozeExercise{
				Text:   "[BLANK_1] and [BLANK_2]",
				Blanks: []ClozeBlank{{ID: 1}},
			},
			wantErr: true,
		},
		{
			name: "blank without token",
			ex: ClozeExercise{
				Text:   "[BLANK_1] only",
				Blanks: []ClozeBlank{{ID: 1}, {ID: 2}},
			},
			wantErr: true,
		},
		{
			name: "token repeated in text",
			ex: ClozeExercise{
				Text:   "[BLANK_1] and again [BLANK_1]",
				Blanks: []ClozeBlank{{ID: 1}},
			},
			wantErr: true,
		},
		{
			name: "blank listed twice",
			ex: ClozeExercise{
				Text:   "[BLANK_1]",
				Blanks: []ClozeBlank{{ID: 1}, {ID: 1}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCloze(tt.ex)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCloze() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBlankByID(t *testing.T) {
	blanks := []ClozeBlank{{ID: 1, Original: "one"}, {ID: 3, Original: "three"}}

	if b, ok := BlankByID(blanks, 3); !ok || b.Original != "three" {
		t.Errorf("BlankByID(3) = %+v, %v", b, ok)
	}
	if _, ok := BlankByID(blanks, 2); ok {
		t.Error("expected miss for id 2")
	}
}

func TestBlankTokenRoundTrip(t *testing.T) {
	got := PlaceholderIDs(BlankToken(7))
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("token %q did not round-trip: %v", BlankToken(7), got)
	}
}
