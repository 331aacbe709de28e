package sqlinline

import (
	"testing"

	"minter/internal/infra"
)

func TestQueriesCarryUniqueMarkers(t *testing.T) {
	queries := map[string]string{
		"QEnsureMintsTable": QEnsureMintsTable,
		"QInsertMint":       QInsertMint,
		"QUpdateMint":       QUpdateMint,
		"QSelectMint":       QSelectMint,
		"QListRecentMints":  QListRecentMints,
	}
	seen := make(map[string]string, len(queries))
	for name, query := range queries {
		marker, body, err := infra.ExtractMarker(query)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if body == "" {
			t.Fatalf("%s: empty body", name)
		}
		if other, ok := seen[marker]; ok {
			t.Fatalf("%s reuses marker of %s", name, other)
		}
		seen[marker] = name
	}
}
