package exam

// EffectiveCatalog reconciles the built-in base catalog with user edits and
// soft deletions:
//
//  1. A base entry whose id appears in edited is replaced in place by the
//     edited version, preserving base ordering.
//  2. Edited entries whose id is not in base are appended in their given
//     (storage) order.
//  3. Any entry whose id appears in deleted is removed, base or appended.
//
// The function is pure and idempotent: reapplying the same (base, edited,
// deleted) triple always yields the same result. An id present in both
// edited and deleted is absent from the result; restoring it only requires
// removing the id from the deleted set.
func EffectiveCatalog(base, edited []Question, deleted map[string]bool) []Question {
	editedByID := make(map[string]Question, len(edited))
	for _, q := range edited {
		editedByID[q.ID] = q
	}

	baseIDs := make(map[string]bool, len(base))
	out := make([]Question, 0, len(base)+len(edited))

	for _, q := range base {
		baseIDs[q.ID] = true
		if deleted[q.ID] {
			continue
		}
		if override, ok := editedByID[q.ID]; ok {
			out = append(out, override)
			continue
		}
		out = append(out, q)
	}

	for _, q := range edited {
		if baseIDs[q.ID] || deleted[q.ID] {
			continue
		}
		out = append(out, q)
	}

	return out
}

// FindQuestion returns the question with the given id from the catalog,
// or false if absent.
func FindQuestion(catalog []Question, id string) (Question, bool) {
	for _, q := range catalog {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// ByChapter returns the catalog entries belonging to one chapter,
// preserving catalog order.
func ByChapter(catalog []Question, chapter string) []Question {
	var out []Question
	for _, q := range catalog {
		if q.Chapter == chapter {
			out = append(out, q)
		}
	}
	return out
}

// Chapters returns the distinct chapters present in the catalog, in first
// appearance order.
func Chapters(catalog []Question) []string {
	seen := make(map[string]bool)
	var out []string
	for _, q := range catalog {
		if q.Chapter == "" || seen[q.Chapter] {
			continue
		}
		seen[q.Chapter] = true
		out = append(out, q.Chapter)
	}
	return out
}
