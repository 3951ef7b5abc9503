package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Black-And-White-Club/card-scorekeeper/app"
	"github.com/Black-And-White-Club/card-scorekeeper/config"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/database"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

type moduleMigrator struct {
	name     string
	migrator *migrate.Migrator
}

func main() {
	cliApp := &cli.App{
		Name:  "bun",
		Usage: "manage card-scorekeeper database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "Path to the configuration file"},
		},
		Commands: []*cli.Command{
			newMultiModuleDBCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withMigrators opens the configured database for the duration of fn.
func withMigrators(c *cli.Context, fn func(ctx context.Context, migrators []moduleMigrator) error) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Open(c.Context, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	var migrators []moduleMigrator
	for _, group := range app.MigrationGroups() {
		migrators = append(migrators, moduleMigrator{name: group.Name, migrator: database.NewMigrator(db, group)})
	}
	return fn(c.Context, migrators)
}

func findMigrator(migrators []moduleMigrator, name string) (*migrate.Migrator, error) {
	for _, m := range migrators {
		if m.name == name {
			return m.migrator, nil
		}
	}
	return nil, fmt.Errorf("invalid module name: %q", name)
}

func newMultiModuleDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(ctx context.Context, migrators []moduleMigrator) error {
						for _, m := range migrators {
							fmt.Printf("Initializing migrations for module: %s\n", m.name)
							if err := m.migrator.Init(ctx); err != nil {
								return fmt.Errorf("init %s: %w", m.name, err)
							}
						}
						return nil
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(ctx context.Context, migrators []moduleMigrator) error {
						for _, m := range migrators {
							fmt.Printf("Running migrations for module: %s\n", m.name)
							group, err := m.migrator.Migrate(ctx)
							if err != nil {
								return err
							}
							if group.IsZero() {
								fmt.Printf("No new migrations to run for module: %s\n", m.name)
							} else {
								fmt.Printf("Migrated module: %s to %s\n", m.name, group)
							}
						}
						return nil
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(ctx context.Context, migrators []moduleMigrator) error {
						// Later modules depend on earlier ones, so roll back in reverse.
						for i := len(migrators) - 1; i >= 0; i-- {
							m := migrators[i]
							fmt.Printf("Rolling back migrations for module: %s\n", m.name)
							group, err := m.migrator.Rollback(ctx)
							if err != nil {
								return err
							}
							if group.IsZero() {
								fmt.Printf("No groups to roll back for module: %s\n", m.name)
							} else {
								fmt.Printf("Rolled back module: %s to %s\n", m.name, group)
							}
						}
						return nil
					})
				},
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(ctx context.Context, migrators []moduleMigrator) error {
						moduleName := c.Args().First()
						migrator, err := findMigrator(migrators, moduleName)
						if err != nil {
							return err
						}

						name := strings.Join(c.Args().Tail(), "_")
						mf, err := migrator.CreateGoMigration(ctx, name)
						if err != nil {
							return err
						}
						fmt.Printf("Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
						return nil
					})
				},
			},
			{
				Name:      "create_sql",
				Usage:     "create up and down SQL migrations",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(ctx context.Context, migrators []moduleMigrator) error {
						moduleName := c.Args().First()
						migrator, err := findMigrator(migrators, moduleName)
						if err != nil {
							return err
						}

						name := strings.Join(c.Args().Tail(), "_")
						files, err := migrator.CreateSQLMigrations(ctx, name)
						if err != nil {
							return err
						}
						for _, mf := range files {
							fmt.Printf("Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
						}
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(ctx context.Context, migrators []moduleMigrator) error {
						for _, m := range migrators {
							ms, err := m.migrator.MigrationsWithStatus(ctx)
							if err != nil {
								return err
							}
							fmt.Printf("Migrations for module: %s\n", m.name)
							fmt.Printf("  %s\n", ms)
							fmt.Printf("  Applied: %s\n", ms.Applied())
							fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
						}
						return nil
					})
				},
			},
		},
	}
}
