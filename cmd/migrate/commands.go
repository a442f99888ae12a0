package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bookshelf-backend/internal/config"
	"bookshelf-backend/migrations"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the bookshelf database schema",
		Long: `Apply, roll back and inspect the embedded goose migrations.
Connection settings come from the DB_* environment variables.`,
		SilenceUsage: true,
	}

	root.AddCommand(newUpCmd(), newDownCmd(), newStatusCmd(), newVersionCmd(), newCreateCmd())
	return root
}

func newUpCmd() *cobra.Command {
	var to int64
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sql.DB) error {
				if to > 0 {
					return goose.UpTo(db, migrations.Dir, to)
				}
				return goose.Up(db, migrations.Dir)
			})
		},
	}
	cmd.Flags().Int64Var(&to, "to", 0, "migrate up to this version only")
	return cmd
}

func newDownCmd() *cobra.Command {
	var to int64
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sql.DB) error {
				if cmd.Flags().Changed("to") {
					return goose.DownTo(db, migrations.Dir, to)
				}
				return goose.Down(db, migrations.Dir)
			})
		},
	}
	cmd.Flags().Int64Var(&to, "to", 0, "roll back down to this version")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sql.DB) error {
				return goose.Status(db, migrations.Dir)
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sql.DB) error {
				version, err := goose.GetDBVersion(db)
				if err != nil {
					return fmt.Errorf("failed to get version: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
				return nil
			})
		},
	}
}

func newCreateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new numbered SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// New files are written to disk, not to the embedded FS.
			goose.SetBaseFS(nil)
			goose.SetSequential(true)
			if err := goose.Create(nil, dir, args[0], "sql"); err != nil {
				return fmt.Errorf("failed to create migration: %w", err)
			}
			log.Info().Str("name", args[0]).Str("dir", dir).Msg("created migration")
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "./migrations", "directory to write the migration into")
	return cmd
}

// withDB opens a database/sql connection through lib/pq, points goose at
// the embedded migrations and runs fn.
func withDB(fn func(db *sql.DB) error) error {
	cfg, err := config.LoadDatabaseConfig()
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.DBName).Msg("connected to database")
	return fn(db)
}
