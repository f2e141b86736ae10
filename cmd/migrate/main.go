// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"packtrail/internal/config"
	"packtrail/internal/database"
	"packtrail/internal/middleware"

	"gorm.io/gorm"
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		log.Fatal("usage: go run ./cmd/migrate <up|auto|status|down> [version]")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	middleware.InitMiddleware(cfg)

	// Schema work is the whole point here, so connect bare and run the
	// requested operation explicitly.
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	ctx := context.Background()
	switch cmd := strings.ToLower(flag.Arg(0)); cmd {
	case "up":
		err = migrateUp(ctx, db)
	case "auto":
		err = autoMigrate(ctx, db, cfg)
	case "status":
		err = printStatus(ctx, db, cfg)
	case "down":
		err = migrateDown(ctx, db, flag.Arg(1))
	default:
		err = fmt.Errorf("unknown command %q (want up, auto, status or down)", cmd)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func migrateUp(ctx context.Context, db *gorm.DB) error {
	if err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("sql migrations failed: %w", err)
	}
	log.Println("sql migrations applied")
	return nil
}

func autoMigrate(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("auto schema apply failed: %w", err)
	}
	log.Println("automigrations applied")
	return nil
}

func printStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	log.Printf("mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d",
		status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
		len(status.AppliedVersions), len(status.PendingMigrations))
	for i := range status.PendingMigrations {
		log.Printf("pending: %s", status.PendingMigrations[i].String())
	}
	return nil
}

func migrateDown(ctx context.Context, db *gorm.DB, arg string) error {
	if arg == "" {
		return fmt.Errorf("usage: go run ./cmd/migrate down <version>")
	}
	version, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", arg, err)
	}
	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	log.Printf("rolled back migration %d", version)
	return nil
}
