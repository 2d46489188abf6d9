package exam

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed questions.json
var baseCatalogJSON []byte

// BaseCatalog returns the built-in past-paper catalog in its fixed order.
// The slice is freshly decoded on each call so callers may modify it.
func BaseCatalog() []Question {
	qs, err := decodeBaseCatalog()
	if err != nil {
		// The embedded catalog is validated by tests; a decode failure
		// here means a broken build, not a runtime condition.
		panic(err)
	}
	return qs
}

func decodeBaseCatalog() ([]Question, error) {
	var qs []Question
	if err := json.Unmarshal(baseCatalogJSON, &qs); err != nil {
		return nil, fmt.Errorf("decode embedded question catalog: %w", err)
	}
	return qs, nil
}
