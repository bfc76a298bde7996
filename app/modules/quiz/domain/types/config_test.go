package quiztypes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	catalogtypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/domain/types"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

func TestDefaultConfiguration(t *testing.T) {
	cfg := DefaultConfiguration()

	assert.Equal(t, DefaultBeginningYear, cfg.BeginningYear)
	assert.Equal(t, DefaultEndYear, cfg.EndYear)
	assert.ElementsMatch(t, catalogtypes.Genders(), cfg.Genders)
	assert.Equal(t, ArtistTypeAll, cfg.ArtistType)
	assert.Equal(t, TagPolicyExclude, cfg.OSTPolicy)
	assert.Equal(t, TagPolicyInclude, cfg.RemixPolicy)
	assert.Equal(t, TagPolicyInclude, cfg.LanguagePolicy)
	assert.Equal(t, ReleaseOfficialOnly, cfg.ReleaseType)
	assert.Equal(t, ShuffleRandom, cfg.Shuffle)
	assert.Equal(t, SeekRandom, cfg.Seek)
	assert.Equal(t, GuessModeSong, cfg.GuessMode)
	assert.Equal(t, DefaultGuessTimeoutSec, cfg.GuessTimeoutSec)
	assert.Equal(t, 0, cfg.LimitStart)
	assert.Equal(t, DefaultLimitEnd, cfg.LimitEnd)
	assert.True(t, cfg.TypoTolerance)
	assert.True(t, cfg.HintsAllowed)
	assert.Equal(t, DefaultLivesPerPlayer, cfg.LivesPerPlayer)
	assert.Equal(t, DefaultClipReplayCap, cfg.ClipReplayCap)
	assert.Equal(t, DefaultClipEndDelaySec, cfg.ClipEndDelaySec)
}

func TestNormalize(t *testing.T) {
	t.Run("invalid enums fall back to defaults", func(t *testing.T) {
		cfg := SessionConfiguration{
			ArtistType:     "bands",
			OSTPolicy:      "sometimes",
			RemixPolicy:    "maybe",
			LanguagePolicy: "??",
			ReleaseType:    "bootleg",
			Shuffle:        "cursed",
			Seek:           "end",
			GuessMode:      "lyrics",
			LimitEnd:       100,
		}
		cfg.Normalize()

		assert.Equal(t, ArtistTypeAll, cfg.ArtistType)
		assert.Equal(t, TagPolicyExclude, cfg.OSTPolicy)
		assert.Equal(t, TagPolicyInclude, cfg.RemixPolicy)
		assert.Equal(t, TagPolicyInclude, cfg.LanguagePolicy)
		assert.Equal(t, ReleaseOfficialOnly, cfg.ReleaseType)
		assert.Equal(t, ShuffleRandom, cfg.Shuffle)
		assert.Equal(t, SeekRandom, cfg.Seek)
		assert.Equal(t, GuessModeSong, cfg.GuessMode)
	})

	t.Run("valid enums survive", func(t *testing.T) {
		cfg := SessionConfiguration{
			ArtistType: ArtistTypeSoloists,
			Shuffle:    ShuffleWeightedHard,
			Seek:       SeekMiddle,
			GuessMode:  GuessModeBoth,
			OSTPolicy:  TagPolicyExclusive,
			LimitEnd:   100,
		}
		cfg.Normalize()

		assert.Equal(t, ArtistTypeSoloists, cfg.ArtistType)
		assert.Equal(t, ShuffleWeightedHard, cfg.Shuffle)
		assert.Equal(t, SeekMiddle, cfg.Seek)
		assert.Equal(t, GuessModeBoth, cfg.GuessMode)
		assert.Equal(t, TagPolicyExclusive, cfg.OSTPolicy)
	})

	t.Run("limit end zero is preserved", func(t *testing.T) {
		cfg := SessionConfiguration{LimitEnd: 0}
		cfg.Normalize()
		assert.Equal(t, 0, cfg.LimitEnd)
	})

	t.Run("negative limit end is defaulted", func(t *testing.T) {
		cfg := SessionConfiguration{LimitEnd: -1}
		cfg.Normalize()
		assert.Equal(t, DefaultLimitEnd, cfg.LimitEnd)
	})

	t.Run("limit window never inverts", func(t *testing.T) {
		cfg := SessionConfiguration{LimitStart: 200, LimitEnd: 100}
		cfg.Normalize()
		assert.Equal(t, 200, cfg.LimitStart)
		assert.Equal(t, 200, cfg.LimitEnd)
	})

	t.Run("negative limit start is clamped", func(t *testing.T) {
		cfg := SessionConfiguration{LimitStart: -5, LimitEnd: 100}
		cfg.Normalize()
		assert.Equal(t, 0, cfg.LimitStart)
	})
}

func TestConfigurationAccessors(t *testing.T) {
	cfg := DefaultConfiguration()

	assert.False(t, cfg.UniqueShuffle())
	cfg.Shuffle = ShuffleUniqueRandom
	assert.True(t, cfg.UniqueShuffle())

	assert.False(t, cfg.GroupFilteringActive())
	cfg.SelectedArtists = []sharedtypes.GroupID{42}
	assert.True(t, cfg.GroupFilteringActive())

	cfg.GuessTimeoutSec = 30
	assert.Equal(t, 30*time.Second, cfg.GuessTimeout())

	assert.Equal(t, time.Duration(0), cfg.Duration())
	cfg.DurationMin = 15
	assert.Equal(t, 15*time.Minute, cfg.Duration())
}
