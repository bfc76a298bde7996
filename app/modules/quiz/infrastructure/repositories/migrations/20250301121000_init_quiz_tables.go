package quizmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	quizdb "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating quiz tables...")

		models := []any{
			(*quizdb.PlayerStats)(nil),
			(*quizdb.GuildStats)(nil),
			(*quizdb.SessionStats)(nil),
			(*quizdb.Bookmark)(nil),
			(*quizdb.GuildConfiguration)(nil),
		}
		for _, model := range models {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}
		if _, err := db.NewCreateIndex().Model((*quizdb.Bookmark)(nil)).
			Index("bookmarks_user_id_idx").IfNotExists().Column("user_id").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateIndex().Model((*quizdb.SessionStats)(nil)).
			Index("session_stats_guild_id_idx").IfNotExists().Column("guild_id").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Quiz tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping quiz tables...")

		models := []any{
			(*quizdb.PlayerStats)(nil),
			(*quizdb.GuildStats)(nil),
			(*quizdb.SessionStats)(nil),
			(*quizdb.Bookmark)(nil),
			(*quizdb.GuildConfiguration)(nil),
		}
		for _, model := range models {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Quiz tables dropped successfully!")
		return nil
	})
}
