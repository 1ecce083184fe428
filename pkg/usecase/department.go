package usecase

import (
	"sort"

	"github.com/secmon-lab/grievance/pkg/domain/types"
)

func mergeDepartments(lists ...[]types.Department) []types.Department {
	seen := make(map[types.Department]struct{})
	var result []types.Department
	for _, list := range lists {
		for _, d := range list {
			d = d.Normalize()
			if d == "" {
				continue
			}
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i] < result[j]
	})
	return result
}
