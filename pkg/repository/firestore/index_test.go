package firestore_test

import (
	"testing"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grievance/pkg/repository/firestore"
)

func indexPaths(idx fireconf.Index) []string {
	paths := make([]string, len(idx.Fields))
	for i, f := range idx.Fields {
		paths[i] = f.Path
	}
	return paths
}

func TestIndexConfig(t *testing.T) {
	cfg := firestore.IndexConfig("")
	if len(cfg.Collections) != 1 {
		t.Fatalf("unexpected collections: %d", len(cfg.Collections))
	}
	gt.V(t, cfg.Collections[0].Name).Equal("complaints")

	indexes := cfg.Collections[0].Indexes
	gt.A(t, indexes).Length(7)

	seen := make(map[string]bool)
	for _, idx := range indexes {
		paths := indexPaths(idx)
		gt.N(t, len(paths)).Greater(1)
		gt.V(t, paths[len(paths)-1]).Equal("id")

		key := ""
		for _, p := range paths {
			key += p + ","
		}
		gt.B(t, seen[key]).False()
		seen[key] = true
	}

	t.Run("department and status filter used by statistics and listing", func(t *testing.T) {
		gt.B(t, seen["department,id,"]).True()
		gt.B(t, seen["status,id,"]).True()
		gt.B(t, seen["department,status,id,"]).True()
		gt.B(t, seen["department,status,owner_user_id,id,"]).True()
	})

	t.Run("prefix is applied to the collection name", func(t *testing.T) {
		gt.V(t, firestore.IndexConfig("test").Collections[0].Name).Equal("test_complaints")
	})
}
