package firestore

import "github.com/m-mizutani/fireconf"

// listFilterFields are the equality filters List can combine, in query order
var listFilterFields = []string{"department", "status", "owner_user_id"}

// IndexConfig returns the composite indexes List needs. Every non-empty
// combination of equality filters is ordered by id, which Firestore cannot
// serve from single-field indexes. prefix must match WithCollectionPrefix.
func IndexConfig(prefix string) *fireconf.Config {
	var indexes []fireconf.Index
	for mask := 1; mask < 1<<len(listFilterFields); mask++ {
		var fields []fireconf.IndexField
		for i, path := range listFilterFields {
			if mask&(1<<i) != 0 {
				fields = append(fields, fireconf.IndexField{Path: path, Order: fireconf.OrderAscending})
			}
		}
		fields = append(fields, fireconf.IndexField{Path: "id", Order: fireconf.OrderAscending})
		indexes = append(indexes, fireconf.Index{Fields: fields})
	}

	name := complaintsCollection
	if prefix != "" {
		name = prefix + "_" + name
	}

	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{Name: name, Indexes: indexes},
		},
	}
}
