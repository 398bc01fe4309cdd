package lod

import "sort"

// Thresholds maps a tier to the farthest viewing distance, in meters, at
// which it is still selected.
type Thresholds map[Tier]float64

// DefaultThresholds returns the standard distance bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LOD500: 0,
		LOD400: 5,
		LOD350: 15,
		LOD300: 30,
		LOD200: 60,
		LOD100: 150,
	}
}

// SelectTierForDistance returns the most detailed tier whose threshold
// still covers distance. Past every threshold the least detailed tier is
// returned. A nil or empty table selects DefaultThresholds.
func SelectTierForDistance(distance float64, thresholds Thresholds) Tier {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds()
	}

	tiers := make([]Tier, 0, len(thresholds))
	for t := range thresholds {
		tiers = append(tiers, t)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] > tiers[j] })

	for _, t := range tiers {
		if distance <= thresholds[t] {
			return t
		}
	}
	return tiers[len(tiers)-1]
}
