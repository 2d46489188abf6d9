package exam

import (
	"fmt"
	"regexp"
	"strconv"
)

// blankToken matches the placeholder format embedded in exercise text:
// [BLANK_<positive integer>].
var blankToken = regexp.MustCompile(`\[BLANK_(\d+)\]`)

// BlankToken renders the placeholder for a blank id.
func BlankToken(id int) string {
	return fmt.Sprintf("[BLANK_%d]", id)
}

// PlaceholderIDs returns the blank ids embedded in an exercise text in
// left-to-right appearance order, duplicates included.
func PlaceholderIDs(text string) []int {
	matches := blankToken.FindAllStringSubmatch(text, -1)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ValidateCloze checks that the exercise text's placeholder tokens and its
// blank list correspond 1:1. Order is irrelevant; each blank id must appear
// exactly once in the text and vice versa.
func ValidateCloze(ex ClozeExercise) error {
	inText := make(map[int]int)
	for _, id := range PlaceholderIDs(ex.Text) {
		inText[id]++
	}

	inList := make(map[int]int)
	for _, b := range ex.Blanks {
		inList[b.ID]++
	}

	for id, n := range inList {
		if n > 1 {
			return fmt.Errorf("blank id %d listed %d times", id, n)
		}
		if inText[id] != 1 {
			return fmt.Errorf("blank id %d appears %d times in text, want 1", id, inText[id])
		}
	}
	for id := range inText {
		if inList[id] == 0 {
			return fmt.Errorf("text placeholder %s has no matching blank", BlankToken(id))
		}
	}
	return nil
}

// BlankByID returns the blank with the given id, or false if absent.
func BlankByID(blanks []ClozeBlank, id int) (ClozeBlank, bool) {
	for _, b := range blanks {
		if b.ID == id {
			return b, true
		}
	}
	return ClozeBlank{}, false
}
