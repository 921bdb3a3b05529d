// internal/service/ranking/ordering.go
package ranking

import (
	"sort"

	"vitrina-service/internal/domain/ranking"
)

// Order produces the display order for a candidate set: FRONT-pinned
// profiles first, unpinned profiles next, BACK-pinned profiles last. Each
// bucket sorts by descending score, then most recent grant, then ascending
// profile ID, so the order is a deterministic function of the snapshot.
func Order(items []ranking.ListedProfile) []ranking.ListedProfile {
	var front, unpinned, back []ranking.ListedProfile
	for _, item := range items {
		switch item.Effect.Pin {
		case ranking.PinFront:
			front = append(front, item)
		case ranking.PinBack:
			back = append(back, item)
		default:
			unpinned = append(unpinned, item)
		}
	}

	sortBucket(front)
	sortBucket(unpinned)
	sortBucket(back)

	ordered := make([]ranking.ListedProfile, 0, len(items))
	ordered = append(ordered, front...)
	ordered = append(ordered, unpinned...)
	ordered = append(ordered, back...)
	return ordered
}

func sortBucket(bucket []ranking.ListedProfile) {
	sort.SliceStable(bucket, func(i, j int) bool {
		a, b := bucket[i], bucket[j]
		if a.Effect.Score != b.Effect.Score {
			return a.Effect.Score > b.Effect.Score
		}
		if !a.Effect.LatestGrant.Equal(b.Effect.LatestGrant) {
			return a.Effect.LatestGrant.After(b.Effect.LatestGrant)
		}
		return a.Profile.ID < b.Profile.ID
	})
}
