package catalogtypes

import (
	"strings"
	"time"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// Gender classifies a song's artist lineup.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderCoed   Gender = "coed"
)

// Genders returns every valid gender value.
func Genders() []Gender {
	return []Gender{GenderFemale, GenderMale, GenderCoed}
}

// ReleaseType distinguishes official video releases from audio-only uploads.
type ReleaseType string

const (
	ReleaseOfficial  ReleaseType = "official"
	ReleaseAudioOnly ReleaseType = "audio_only"
)

// Tag marks a song as an OST cut, a remix, or a non-default language release.
type Tag string

const (
	TagOST      Tag = "ost"
	TagRemix    Tag = "remix"
	TagLanguage Tag = "language"
)

// CollabDelimiter splits a collab artist string into independent artist names.
const CollabDelimiter = " + "

// Song is one immutable catalog record. Instances are shared read-only across
// every live session; never mutate one after the catalog is built.
type Song struct {
	ID              sharedtypes.SongID
	Name            string
	LocalizedName   string
	Aliases         []string
	ArtistID        sharedtypes.GroupID
	ArtistName      string
	LocalizedArtist string
	ArtistAliases   []string
	PublishDate     time.Time
	Gender          Gender
	Views           int64
	Tags            map[Tag]struct{}
	Release         ReleaseType
	DurationSec     float64

	// SelectionWeight is derived by the selector's shuffle ordering, not
	// stored. 0 means "unset"; draws treat it as 1.
	SelectionWeight float64
}

// HasTag reports whether the song carries the given tag.
func (s *Song) HasTag(tag Tag) bool {
	_, ok := s.Tags[tag]
	return ok
}

// CollabArtists splits the artist name on the collab delimiter. A solo or
// single-group song yields one entry.
func (s *Song) CollabArtists() []string {
	return strings.Split(s.ArtistName, CollabDelimiter)
}

// AcceptedSongNames lists every string accepted as a correct song-name guess:
// the base name, the localized name, and every alias.
func (s *Song) AcceptedSongNames() []string {
	names := make([]string, 0, 2+len(s.Aliases))
	names = append(names, s.Name)
	if s.LocalizedName != "" {
		names = append(names, s.LocalizedName)
	}
	names = append(names, s.Aliases...)
	return names
}

// AcceptedArtistNames lists every string accepted as a correct artist guess.
// Collab artist names are split into independent accepted answers.
func (s *Song) AcceptedArtistNames() []string {
	names := make([]string, 0, 2+len(s.ArtistAliases))
	for _, part := range s.CollabArtists() {
		names = append(names, part)
	}
	if s.LocalizedArtist != "" {
		for _, part := range strings.Split(s.LocalizedArtist, CollabDelimiter) {
			names = append(names, part)
		}
	}
	names = append(names, s.ArtistAliases...)
	return names
}

// ArtistGroup is one catalog artist entry. Subunits reference their parent
// group; collabs carry the member group IDs.
type ArtistGroup struct {
	ID           sharedtypes.GroupID
	Name         string
	Gender       Gender
	IsCollab     bool
	Members      []sharedtypes.GroupID
	ParentID     sharedtypes.GroupID
	IsSoloist    bool
	ShadowBanned bool
}
