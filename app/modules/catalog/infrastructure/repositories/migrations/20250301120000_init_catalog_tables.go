package catalogmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	catalogdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating catalog tables...")

		if _, err := db.NewCreateTable().Model((*catalogdb.Song)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*catalogdb.ArtistGroup)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateIndex().Model((*catalogdb.Song)(nil)).
			Index("songs_artist_id_idx").IfNotExists().Column("artist_id").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Catalog tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping catalog tables...")

		if _, err := db.NewDropTable().Model((*catalogdb.Song)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*catalogdb.ArtistGroup)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Catalog tables dropped successfully!")
		return nil
	})
}
