package ranking

import (
	"testing"
	"time"

	"vitrina-service/internal/domain/profile"
	"vitrina-service/internal/domain/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listed(id int64, score float64, pin ranking.Pin, latestGrant time.Time) ranking.ListedProfile {
	return ranking.ListedProfile{
		Profile: &profile.Profile{ID: id, Active: true},
		Effect:  ranking.Effect{Score: score, Pin: pin, LatestGrant: latestGrant},
	}
}

func orderedIDs(items []ranking.ListedProfile) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.Profile.ID
	}
	return ids
}

func TestOrderBucketsPinnedProfiles(t *testing.T) {
	items := []ranking.ListedProfile{
		listed(1, 500, ranking.PinNone, baseTime),
		listed(2, 10, ranking.PinBack, baseTime),
		listed(3, 5, ranking.PinFront, baseTime),
		listed(4, 900, ranking.PinBack, baseTime),
		listed(5, 100, ranking.PinNone, baseTime),
	}

	got := Order(items)

	// FRONT first regardless of score, BACK last regardless of score.
	assert.Equal(t, []int64{3, 1, 5, 4, 2}, orderedIDs(got))
}

func TestOrderFrontPinBeatsAnyScore(t *testing.T) {
	items := []ranking.ListedProfile{
		listed(1, 1000, ranking.PinNone, baseTime),
		listed(2, 0, ranking.PinFront, baseTime),
	}

	got := Order(items)

	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Profile.ID)
}

func TestOrderSortsWithinBucketByScoreThenGrantThenID(t *testing.T) {
	earlier := baseTime
	later := baseTime.Add(time.Hour)

	items := []ranking.ListedProfile{
		listed(4, 50, ranking.PinNone, earlier),
		listed(3, 50, ranking.PinNone, later),
		listed(2, 50, ranking.PinNone, later),
		listed(1, 70, ranking.PinNone, earlier),
	}

	got := Order(items)

	// Higher score first, then more recent grant, then lower profile ID.
	assert.Equal(t, []int64{1, 2, 3, 4}, orderedIDs(got))
}

func TestOrderIsDeterministic(t *testing.T) {
	items := []ranking.ListedProfile{
		listed(2, 10, ranking.PinBack, baseTime),
		listed(5, 10, ranking.PinNone, baseTime),
		listed(1, 10, ranking.PinFront, baseTime),
		listed(4, 10, ranking.PinNone, baseTime),
		listed(3, 10, ranking.PinNone, baseTime),
	}

	first := Order(items)
	for i := 0; i < 10; i++ {
		assert.Equal(t, orderedIDs(first), orderedIDs(Order(items)))
	}
}

func TestOrderEmptyInput(t *testing.T) {
	assert.Empty(t, Order(nil))
}
