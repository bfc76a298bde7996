package selector

import (
	catalogtypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/domain/types"
	quiztypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/domain/types"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// filterSongs evaluates the configuration's filter conjunction against the
// catalog. The force-play override short-circuits everything else.
func (s *Selector) filterSongs() []catalogtypes.Song {
	if s.cfg.ForcePlaySongID != "" {
		if song, ok := s.catalog.Song(s.cfg.ForcePlaySongID); ok {
			return []catalogtypes.Song{*song}
		}
		return nil
	}

	allowedArtists := s.allowedArtistSet()

	var matched []catalogtypes.Song
	for _, song := range s.catalog.Songs() {
		if !s.matchesYear(&song) {
			continue
		}
		if !s.matchesGender(&song) {
			continue
		}
		if !s.matchesArtist(&song, allowedArtists) {
			continue
		}
		if !s.matchesArtistType(&song) {
			continue
		}
		if !matchesTagPolicy(&song, catalogtypes.TagOST, s.cfg.OSTPolicy) {
			continue
		}
		if !matchesTagPolicy(&song, catalogtypes.TagRemix, s.cfg.RemixPolicy) {
			continue
		}
		if !matchesTagPolicy(&song, catalogtypes.TagLanguage, s.cfg.LanguagePolicy) {
			continue
		}
		if s.cfg.ReleaseType == quiztypes.ReleaseOfficialOnly && song.Release != catalogtypes.ReleaseOfficial {
			continue
		}
		matched = append(matched, song)
	}
	return matched
}

func (s *Selector) matchesYear(song *catalogtypes.Song) bool {
	year := song.PublishDate.Year()
	return year >= s.cfg.BeginningYear && year <= s.cfg.EndYear
}

// matchesGender filters on gender membership. While alternating-gender mode
// is on, the filter admits both single-gender values and the per-draw
// override narrows further at selection time.
func (s *Selector) matchesGender(song *catalogtypes.Song) bool {
	if s.cfg.AlternatingGender {
		return song.Gender == catalogtypes.GenderFemale || song.Gender == catalogtypes.GenderMale
	}
	for _, g := range s.cfg.Genders {
		if song.Gender == g {
			return true
		}
	}
	return false
}

// allowedArtistSet expands the selected-groups restriction: selected groups
// union explicitly included artists, minus explicitly excluded, with subunit
// and collab expansion when enabled. A nil return means no selected-groups
// restriction is active.
func (s *Selector) allowedArtistSet() map[sharedtypes.GroupID]struct{} {
	if len(s.cfg.SelectedArtists) == 0 {
		return nil
	}

	allowed := make(map[sharedtypes.GroupID]struct{})
	add := func(id sharedtypes.GroupID) {
		if !s.catalog.ShadowBanned(id) {
			allowed[id] = struct{}{}
		}
	}

	for _, id := range s.cfg.SelectedArtists {
		add(id)
		if !s.cfg.IncludeSubunits {
			continue
		}
		subunits := s.catalog.Subunits(id)
		for _, sub := range subunits {
			add(sub)
			for _, collab := range s.catalog.CollabsInvolving(sub) {
				add(collab)
			}
		}
		for _, collab := range s.catalog.CollabsInvolving(id) {
			add(collab)
		}
	}
	for _, id := range s.cfg.IncludedArtists {
		add(id)
	}
	for _, id := range s.cfg.ExcludedArtists {
		delete(allowed, id)
	}
	return allowed
}

func (s *Selector) matchesArtist(song *catalogtypes.Song, allowed map[sharedtypes.GroupID]struct{}) bool {
	if s.catalog.ShadowBanned(song.ArtistID) {
		return false
	}
	if allowed != nil {
		_, ok := allowed[song.ArtistID]
		return ok
	}
	for _, id := range s.cfg.ExcludedArtists {
		if song.ArtistID == id {
			return false
		}
	}
	return true
}

func (s *Selector) matchesArtistType(song *catalogtypes.Song) bool {
	if s.cfg.ArtistType == quiztypes.ArtistTypeAll {
		return true
	}
	group, ok := s.catalog.Group(song.ArtistID)
	if !ok {
		return true
	}
	if s.cfg.ArtistType == quiztypes.ArtistTypeSoloists {
		return group.IsSoloist
	}
	return !group.IsSoloist
}

func matchesTagPolicy(song *catalogtypes.Song, tag catalogtypes.Tag, policy quiztypes.TagPolicy) bool {
	switch policy {
	case quiztypes.TagPolicyExclude:
		return !song.HasTag(tag)
	case quiztypes.TagPolicyExclusive:
		return song.HasTag(tag)
	default:
		return true
	}
}
