package catalogdb

import (
	"time"

	"github.com/uptrace/bun"

	catalogtypes "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/domain/types"
	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// Song is the persisted catalog record.
type Song struct {
	bun.BaseModel `bun:"table:songs,alias:s"`

	ID              string    `bun:"id,pk"`
	Name            string    `bun:"name,notnull"`
	LocalizedName   string    `bun:"localized_name"`
	Aliases         []string  `bun:"aliases,array"`
	ArtistID        int64     `bun:"artist_id,notnull"`
	ArtistName      string    `bun:"artist_name,notnull"`
	LocalizedArtist string    `bun:"localized_artist"`
	ArtistAliases   []string  `bun:"artist_aliases,array"`
	PublishDate     time.Time `bun:"publish_date,notnull"`
	Gender          string    `bun:"gender,notnull"`
	Views           int64     `bun:"views,notnull,default:0"`
	Tags            []string  `bun:"tags,array"`
	ReleaseType     string    `bun:"release_type,notnull"`
	DurationSec     float64   `bun:"duration_sec,notnull,default:0"`
	PlayCount       int64     `bun:"play_count,notnull,default:0"`
	GuessCount      int64     `bun:"guess_count,notnull,default:0"`
}

// ArtistGroup is the persisted artist record.
type ArtistGroup struct {
	bun.BaseModel `bun:"table:artist_groups,alias:ag"`

	ID           int64   `bun:"id,pk"`
	Name         string  `bun:"name,notnull"`
	Gender       string  `bun:"gender,notnull"`
	IsCollab     bool    `bun:"is_collab,notnull,default:false"`
	Members      []int64 `bun:"members,array"`
	ParentID     int64   `bun:"parent_id,nullzero"`
	IsSoloist    bool    `bun:"is_soloist,notnull,default:false"`
	ShadowBanned bool    `bun:"shadow_banned,notnull,default:false"`
}

func (m *Song) toDomain() catalogtypes.Song {
	tags := make(map[catalogtypes.Tag]struct{}, len(m.Tags))
	for _, t := range m.Tags {
		tags[catalogtypes.Tag(t)] = struct{}{}
	}
	return catalogtypes.Song{
		ID:              sharedtypes.SongID(m.ID),
		Name:            m.Name,
		LocalizedName:   m.LocalizedName,
		Aliases:         m.Aliases,
		ArtistID:        sharedtypes.GroupID(m.ArtistID),
		ArtistName:      m.ArtistName,
		LocalizedArtist: m.LocalizedArtist,
		ArtistAliases:   m.ArtistAliases,
		PublishDate:     m.PublishDate,
		Gender:          catalogtypes.Gender(m.Gender),
		Views:           m.Views,
		Tags:            tags,
		Release:         catalogtypes.ReleaseType(m.ReleaseType),
		DurationSec:     m.DurationSec,
	}
}

func (m *ArtistGroup) toDomain() catalogtypes.ArtistGroup {
	members := make([]sharedtypes.GroupID, len(m.Members))
	for i, id := range m.Members {
		members[i] = sharedtypes.GroupID(id)
	}
	return catalogtypes.ArtistGroup{
		ID:           sharedtypes.GroupID(m.ID),
		Name:         m.Name,
		Gender:       catalogtypes.Gender(m.Gender),
		IsCollab:     m.IsCollab,
		Members:      members,
		ParentID:     sharedtypes.GroupID(m.ParentID),
		IsSoloist:    m.IsSoloist,
		ShadowBanned: m.ShadowBanned,
	}
}
