package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/noorvia/noorvia-backend/pkg/config"
	"github.com/noorvia/noorvia-backend/pkg/db"
	"github.com/noorvia/noorvia-backend/pkg/logger"
	"github.com/noorvia/noorvia-backend/pkg/migrate"
)

const usage = `usage: migrate [-dir path] <command> [arg]

commands:
  up             apply every pending migration
  down           roll back the latest migration
  status         list applied and pending migrations
  to <version>   migrate up or down to a YYYYMMDDHHMMSS version
  new <name>     write an empty migration file
  check          validate migration file names and goose markers
`

var errUsage = errors.New("invalid arguments")

// invocation is a parsed command line.
type invocation struct {
	dir     string
	command string
	arg     string
}

// needsDB reports whether the command talks to the database.
func (inv invocation) needsDB() bool {
	return inv.command != "new" && inv.command != "check"
}

func parseArgs(args []string) (invocation, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dir := fs.String("dir", migrate.DefaultDir, "goose migrations directory")
	if err := fs.Parse(args); err != nil {
		return invocation{}, fmt.Errorf("%w: %v", errUsage, err)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return invocation{}, fmt.Errorf("%w: missing command", errUsage)
	}
	inv := invocation{dir: *dir, command: strings.ToLower(rest[0])}

	switch inv.command {
	case "up", "down", "status", "check":
		if len(rest) > 1 {
			return invocation{}, fmt.Errorf("%w: %s takes no argument", errUsage, inv.command)
		}
	case "to", "new":
		if len(rest) != 2 || strings.TrimSpace(rest[1]) == "" {
			return invocation{}, fmt.Errorf("%w: %s needs exactly one argument", errUsage, inv.command)
		}
		inv.arg = strings.TrimSpace(rest[1])
	default:
		return invocation{}, fmt.Errorf("%w: unknown command %q", errUsage, rest[0])
	}
	return inv, nil
}

func main() {
	inv, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
		os.Exit(2)
	}

	_ = godotenv.Load()
	if err := execute(context.Background(), inv, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", inv.command, err)
		os.Exit(1)
	}
}

func execute(ctx context.Context, inv invocation, out io.Writer) error {
	if !inv.needsDB() {
		return executeOffline(inv, out)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"command": inv.command,
		"dir":     inv.dir,
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer client.Close()

	// sqlite is a local-only driver; its schema comes from the models.
	if cfg.DB.Driver == config.DBDriverSQLite {
		if inv.command != "up" {
			return fmt.Errorf("sqlite only supports up")
		}
		if err := client.AutoMigrate(); err != nil {
			return fmt.Errorf("sqlite auto migrate: %w", err)
		}
		logg.Info(ctx, "sqlite schema migrated from models")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("unwrap sql database: %w", err)
	}
	if err := applyGoose(ctx, sqlDB, inv); err != nil {
		return err
	}
	logg.Info(ctx, "migrations applied")
	return nil
}

func executeOffline(inv invocation, out io.Writer) error {
	if inv.command == "new" {
		path, err := migrate.CreateSQLMigration(inv.dir, inv.arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "created", path)
		return nil
	}
	if err := migrate.ValidateDir(inv.dir); err != nil {
		return err
	}
	fmt.Fprintln(out, "migrations ok")
	return nil
}

func applyGoose(ctx context.Context, sqlDB *sql.DB, inv invocation) error {
	if inv.command == "to" {
		return migrate.MigrateToVersion(ctx, sqlDB, inv.dir, inv.arg)
	}
	return migrate.Run(ctx, sqlDB, inv.dir, inv.command)
}
