// Package catalog holds the immutable song catalog shared by every session.
// It is populated once at startup (and on explicit reload) from the catalog
// repository; after Build returns, all accessors are safe for concurrent use.
package catalog

import (
	"fmt"

	catalogtypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/domain/types"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// Catalog is a read-only, indexed view over the loaded song and artist data.
type Catalog struct {
	songs        []catalogtypes.Song
	byID         map[sharedtypes.SongID]*catalogtypes.Song
	groups       map[sharedtypes.GroupID]*catalogtypes.ArtistGroup
	subunits     map[sharedtypes.GroupID][]sharedtypes.GroupID
	collabsOf    map[sharedtypes.GroupID][]sharedtypes.GroupID
	shadowBanned map[sharedtypes.GroupID]struct{}
}

// Build indexes the given songs and artist groups into a Catalog. The input
// slices are copied; callers may discard them afterwards.
func Build(songs []catalogtypes.Song, groups []catalogtypes.ArtistGroup) (*Catalog, error) {
	c := &Catalog{
		songs:        make([]catalogtypes.Song, len(songs)),
		byID:         make(map[sharedtypes.SongID]*catalogtypes.Song, len(songs)),
		groups:       make(map[sharedtypes.GroupID]*catalogtypes.ArtistGroup, len(groups)),
		subunits:     make(map[sharedtypes.GroupID][]sharedtypes.GroupID),
		collabsOf:    make(map[sharedtypes.GroupID][]sharedtypes.GroupID),
		shadowBanned: make(map[sharedtypes.GroupID]struct{}),
	}
	copy(c.songs, songs)

	for i := range c.songs {
		song := &c.songs[i]
		if song.ID == "" {
			return nil, fmt.Errorf("song %q has an empty ID", song.Name)
		}
		if _, dup := c.byID[song.ID]; dup {
			return nil, fmt.Errorf("duplicate song ID %q", song.ID)
		}
		c.byID[song.ID] = song
	}

	for i := range groups {
		group := groups[i]
		c.groups[group.ID] = &group
		if group.ShadowBanned {
			c.shadowBanned[group.ID] = struct{}{}
		}
		if group.ParentID != 0 {
			c.subunits[group.ParentID] = append(c.subunits[group.ParentID], group.ID)
		}
		if group.IsCollab {
			for _, member := range group.Members {
				c.collabsOf[member] = append(c.collabsOf[member], group.ID)
			}
		}
	}

	return c, nil
}

// Songs returns the full catalog. The returned slice is shared; callers must
// treat it as read-only.
func (c *Catalog) Songs() []catalogtypes.Song {
	return c.songs
}

// Size returns the number of loaded songs.
func (c *Catalog) Size() int {
	return len(c.songs)
}

// Song looks up one record by key.
func (c *Catalog) Song(id sharedtypes.SongID) (*catalogtypes.Song, bool) {
	song, ok := c.byID[id]
	return song, ok
}

// Duration returns the known duration of a song in seconds.
func (c *Catalog) Duration(id sharedtypes.SongID) (float64, error) {
	song, ok := c.byID[id]
	if !ok {
		return 0, fmt.Errorf("unknown song %q", id)
	}
	return song.DurationSec, nil
}

// Group looks up one artist group by ID.
func (c *Catalog) Group(id sharedtypes.GroupID) (*catalogtypes.ArtistGroup, bool) {
	group, ok := c.groups[id]
	return group, ok
}

// Subunits returns the subunit group IDs of a parent group.
func (c *Catalog) Subunits(parent sharedtypes.GroupID) []sharedtypes.GroupID {
	return c.subunits[parent]
}

// CollabsInvolving returns the collab group IDs that include the given group
// as a member.
func (c *Catalog) CollabsInvolving(id sharedtypes.GroupID) []sharedtypes.GroupID {
	return c.collabsOf[id]
}

// ShadowBanned reports whether an artist is excluded from selection
// regardless of guild configuration.
func (c *Catalog) ShadowBanned(id sharedtypes.GroupID) bool {
	_, banned := c.shadowBanned[id]
	return banned
}
