package lod

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Tier is a level of detail. Larger values mean higher fidelity.
type Tier int

const (
	LOD100 Tier = 100
	LOD200 Tier = 200
	LOD300 Tier = 300
	LOD350 Tier = 350
	LOD400 Tier = 400
	LOD500 Tier = 500
)

// ErrUnknownTier is returned for tiers outside the standard set.
var ErrUnknownTier = errors.New("unknown LOD tier")

var allTiers = []Tier{LOD100, LOD200, LOD300, LOD350, LOD400, LOD500}

// AllTiers returns every standard tier in ascending order.
func AllTiers() []Tier {
	return append([]Tier(nil), allTiers...)
}

// Valid reports whether t is a standard tier.
func (t Tier) Valid() bool {
	switch t {
	case LOD100, LOD200, LOD300, LOD350, LOD400, LOD500:
		return true
	}
	return false
}

func (t Tier) String() string {
	return "LOD" + strconv.Itoa(int(t))
}

// ParseTier accepts "LOD300", "lod300" or "300".
func ParseTier(s string) (Tier, error) {
	s = strings.TrimSpace(s)
	if len(s) > 3 && strings.EqualFold(s[:3], "lod") {
		s = s[3:]
	}
	n, err := strconv.Atoi(s)
	if err != nil || !Tier(n).Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
	return Tier(n), nil
}

// normalizeTiers validates tiers and returns them sorted and deduplicated.
// An empty input selects every tier.
func normalizeTiers(tiers []Tier) ([]Tier, error) {
	if len(tiers) == 0 {
		return AllTiers(), nil
	}
	seen := make(map[Tier]struct{}, len(tiers))
	out := make([]Tier, 0, len(tiers))
	for _, t := range tiers {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownTier, int(t))
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
