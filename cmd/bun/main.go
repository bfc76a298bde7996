package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"

	"github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/infrastructure/importers"
	"github.com/Blind-Test-Club/songquiz-bot/config"
	"github.com/Blind-Test-Club/songquiz-bot/internal/observability"

	catalogmigrations "github.com/Blind-Test-Club/songquiz-bot/app/modules/catalog/infrastructure/repositories/migrations"
	quizmigrations "github.com/Blind-Test-Club/songquiz-bot/app/modules/quiz/infrastructure/repositories/migrations"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())
	defer db.Close()

	migrators := map[string]*migrate.Migrator{
		"catalog": migrate.NewMigrator(db, catalogmigrations.Migrations),
		"quiz":    migrate.NewMigrator(db, quizmigrations.Migrations),
	}

	cliApp := &cli.App{
		Name: "bun",
		Commands: []*cli.Command{
			newMigrateCommand(migrators),
			newCatalogCommand(db, cfg),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newMigrateCommand(migrators map[string]*migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					for moduleName, migrator := range migrators {
						fmt.Printf("Initializing migrations for module: %s\n", moduleName)
						if err := migrator.Init(c.Context); err != nil {
							return err
						}
					}
					return nil
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					for moduleName, migrator := range migrators {
						group, err := migrator.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No new migrations to run for module: %s\n", moduleName)
						} else {
							fmt.Printf("Migrated module: %s to %s\n", moduleName, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					for moduleName, migrator := range migrators {
						group, err := migrator.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", moduleName)
						} else {
							fmt.Printf("Rolled back module: %s to %s\n", moduleName, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migration status",
				Action: func(c *cli.Context) error {
					for moduleName, migrator := range migrators {
						ms, err := migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("%s: migrations %s, unapplied %s, last group %s\n",
							moduleName, ms, ms.Unapplied(), ms.LastGroup())
					}
					return nil
				},
			},
		},
	}
}

func newCatalogCommand(db *bun.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "catalog maintenance",
		Subcommands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "import a catalog workbook (xlsx)",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return fmt.Errorf("usage: catalog import <file>")
					}
					importer := &importers.XLSXImporter{
						DB:     db,
						Logger: observability.NewLogger(cfg.Observability.Environment),
					}
					count, err := importer.Import(c.Context, path)
					if err != nil {
						return err
					}
					fmt.Printf("Imported %d songs from %s\n", count, path)
					return nil
				},
			},
		},
	}
}
