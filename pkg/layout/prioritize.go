package layout

import (
	"slices"

	"github.com/matzehuels/adforge/pkg/creative"
)

// RoleRank returns the placement priority of a role; lower ranks first.
func RoleRank(r creative.AssetRole) int {
	switch r {
	case creative.RoleLogo:
		return 0
	case creative.RoleProduct:
		return 1
	case creative.RoleLifestyle:
		return 2
	case creative.RoleBackground:
		return 3
	default:
		return 4
	}
}

// Prioritize returns assets ordered by role rank, then by quality
// descending. Missing quality counts as [creative.DefaultQuality]. The sort
// is stable and the input slice is left untouched.
func Prioritize(assets []creative.Asset) []creative.Asset {
	out := slices.Clone(assets)
	slices.SortStableFunc(out, func(a, b creative.Asset) int {
		if ra, rb := RoleRank(a.Role), RoleRank(b.Role); ra != rb {
			return ra - rb
		}
		return b.QualityOrDefault() - a.QualityOrDefault()
	})
	return out
}
