// Package importers loads catalog data from operator-supplied spreadsheets.
// The canonical catalog lives in Postgres; the importer exists so curators
// can ship bulk updates as a workbook instead of SQL.
package importers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"

	catalogdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/infrastructure/repositories"
)

// songSheet is the workbook sheet holding song rows. The first row must be
// the header.
const songSheet = "songs"

// Expected column order of the songs sheet.
const (
	colID = iota
	colName
	colLocalizedName
	colAliases
	colArtistID
	colArtistName
	colLocalizedArtist
	colArtistAliases
	colPublishDate
	colGender
	colViews
	colTags
	colReleaseType
	colDurationSec
	columnCount
)

const listSeparator = ";"

// XLSXImporter parses a catalog workbook and upserts its rows.
type XLSXImporter struct {
	DB     *bun.DB
	Logger *slog.Logger
}

// Import reads the songs sheet and upserts every row, returning the number
// of imported songs. Malformed rows abort the import; a partial catalog is
// worse than a stale one.
func (imp *XLSXImporter) Import(ctx context.Context, path string) (int, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer book.Close()

	rows, err := book.GetRows(songSheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %q: %w", songSheet, err)
	}
	if len(rows) <= 1 {
		return 0, nil
	}

	songs := make([]catalogdb.Song, 0, len(rows)-1)
	for i, row := range rows[1:] {
		song, err := parseSongRow(row)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		songs = append(songs, song)
	}

	_, err = imp.DB.NewInsert().
		Model(&songs).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("localized_name = EXCLUDED.localized_name").
		Set("aliases = EXCLUDED.aliases").
		Set("artist_id = EXCLUDED.artist_id").
		Set("artist_name = EXCLUDED.artist_name").
		Set("localized_artist = EXCLUDED.localized_artist").
		Set("artist_aliases = EXCLUDED.artist_aliases").
		Set("publish_date = EXCLUDED.publish_date").
		Set("gender = EXCLUDED.gender").
		Set("views = EXCLUDED.views").
		Set("tags = EXCLUDED.tags").
		Set("release_type = EXCLUDED.release_type").
		Set("duration_sec = EXCLUDED.duration_sec").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert songs: %w", err)
	}

	imp.Logger.InfoContext(ctx, "catalog import finished",
		slog.String("path", path),
		slog.Int("songs", len(songs)),
	)
	return len(songs), nil
}

func parseSongRow(row []string) (catalogdb.Song, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	if cell(colID) == "" {
		return catalogdb.Song{}, fmt.Errorf("missing song id")
	}
	if cell(colName) == "" || cell(colArtistName) == "" {
		return catalogdb.Song{}, fmt.Errorf("missing song or artist name")
	}

	artistID, err := strconv.ParseInt(cell(colArtistID), 10, 64)
	if err != nil {
		return catalogdb.Song{}, fmt.Errorf("invalid artist id %q: %w", cell(colArtistID), err)
	}
	publishDate, err := time.Parse("2006-01-02", cell(colPublishDate))
	if err != nil {
		return catalogdb.Song{}, fmt.Errorf("invalid publish date %q: %w", cell(colPublishDate), err)
	}
	views := int64(0)
	if v := cell(colViews); v != "" {
		views, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return catalogdb.Song{}, fmt.Errorf("invalid view count %q: %w", v, err)
		}
	}
	duration := 0.0
	if v := cell(colDurationSec); v != "" {
		duration, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return catalogdb.Song{}, fmt.Errorf("invalid duration %q: %w", v, err)
		}
	}

	return catalogdb.Song{
		ID:              cell(colID),
		Name:            cell(colName),
		LocalizedName:   cell(colLocalizedName),
		Aliases:         splitList(cell(colAliases)),
		ArtistID:        artistID,
		ArtistName:      cell(colArtistName),
		LocalizedArtist: cell(colLocalizedArtist),
		ArtistAliases:   splitList(cell(colArtistAliases)),
		PublishDate:     publishDate,
		Gender:          cell(colGender),
		Views:           views,
		Tags:            splitList(cell(colTags)),
		ReleaseType:     cell(colReleaseType),
		DurationSec:     duration,
	}, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, listSeparator)
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
