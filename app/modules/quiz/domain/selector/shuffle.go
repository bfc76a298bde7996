package selector

import (
	"sort"

	catalogtypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/domain/types"
	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
)

// chronologicalBuckets is the fixed partition count of the chronological
// orderings: songs are bucketed by publish date and shuffled only within
// their bucket, preserving coarse chronological order.
const chronologicalBuckets = 10

// Weighted orderings assign selection weights spanning [weightFloor,
// weightCeiling] linearly by popularity rank.
const (
	weightFloor   = 1.0
	weightCeiling = 9.0
)

// orderSongs sorts the matched set in place according to the configured
// shuffle kind and assigns selection weights where the kind calls for them.
// The ordering is applied before the limit window, so it determines which
// songs survive the cut as well as their draw weight.
func (s *Selector) orderSongs(songs []catalogtypes.Song) {
	switch s.cfg.Shuffle {
	case quiztypes.ShufflePopularity:
		sortByViewsDesc(songs)
	case quiztypes.ShuffleWeightedEasy:
		sortByViewsDesc(songs)
		assignWeights(songs, false)
	case quiztypes.ShuffleWeightedHard:
		sortByViewsDesc(songs)
		assignWeights(songs, true)
	case quiztypes.ShuffleChronological:
		s.bucketShuffle(songs, false)
	case quiztypes.ShuffleReverseChronological:
		s.bucketShuffle(songs, true)
	default:
		// Random and unique-random draw uniformly; no reordering.
	}
}

func sortByViewsDesc(songs []catalogtypes.Song) {
	sort.SliceStable(songs, func(i, j int) bool {
		return songs[i].Views > songs[j].Views
	})
}

// assignWeights spreads selection weights across the popularity ranking.
// Easy mode makes popular songs heavy; hard mode reverses the gradient.
func assignWeights(songs []catalogtypes.Song, hard bool) {
	n := len(songs)
	if n == 0 {
		return
	}
	if n == 1 {
		songs[0].SelectionWeight = weightCeiling
		return
	}
	span := weightCeiling - weightFloor
	for i := range songs {
		frac := float64(i) / float64(n-1)
		if hard {
			songs[i].SelectionWeight = weightFloor + span*frac
		} else {
			songs[i].SelectionWeight = weightCeiling - span*frac
		}
	}
}

// bucketShuffle sorts by publish date, partitions into fixed buckets, and
// shuffles within each bucket only.
func (s *Selector) bucketShuffle(songs []catalogtypes.Song, reverse bool) {
	sort.SliceStable(songs, func(i, j int) bool {
		if reverse {
			return songs[i].PublishDate.After(songs[j].PublishDate)
		}
		return songs[i].PublishDate.Before(songs[j].PublishDate)
	})

	n := len(songs)
	if n == 0 {
		return
	}
	bucketSize := (n + chronologicalBuckets - 1) / chronologicalBuckets
	for start := 0; start < n; start += bucketSize {
		end := start + bucketSize
		if end > n {
			end = n
		}
		bucket := songs[start:end]
		s.rng.Shuffle(len(bucket), func(i, j int) {
			bucket[i], bucket[j] = bucket[j], bucket[i]
		})
	}
}
