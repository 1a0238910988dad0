package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"kintree/internal/config"
)

func main() {
	var (
		command = flag.String("command", "", "Migration command: up, down, version, force")
		steps   = flag.Int("steps", 0, "Number of migration steps (for down)")
		version = flag.Int("version", 0, "Migration version (for force)")
	)
	flag.Parse()

	if *command == "" {
		fmt.Println("Usage: go run cmd/migrate/main.go -command [up|down|version|force] [options]")
		fmt.Println("Commands:")
		fmt.Println("  up       - Apply all pending migrations")
		fmt.Println("  down     - Rollback migrations (-steps N, default 1)")
		fmt.Println("  version  - Show current migration version")
		fmt.Println("  force    - Force set migration version (-version N)")
		os.Exit(1)
	}

	cfg := config.NewConfig()

	dsn := fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}
	defer m.Close()

	switch *command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Migration up failed: %v", err)
		}
		fmt.Println("Migrations applied")
	case "down":
		n := *steps
		if n <= 0 {
			n = 1
		}
		if err := m.Steps(-n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Migration down failed: %v", err)
		}
		fmt.Printf("Rolled back %d migration(s)\n", n)
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("Failed to read version: %v", err)
		}
		fmt.Printf("Version: %d, dirty: %t\n", v, dirty)
	case "force":
		if err := m.Force(*version); err != nil {
			log.Fatalf("Force failed: %v", err)
		}
		fmt.Printf("Forced version to %d\n", *version)
	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}
