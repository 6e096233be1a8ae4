package main

import (
	"errors"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/samirrijal/isstrack/internal/pkg/config"
	"github.com/samirrijal/isstrack/internal/pkg/logging"
	"github.com/samirrijal/isstrack/migrations"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|steps N|version|force V>")
	}

	cfg, err := config.Load("isstrack-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("isstrack-migrate", cfg.Log.Level, "text")

	src, err := iofs.New(migrations.FS, migrations.Dir)
	if err != nil {
		log.Fatalf("migration source: %v", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.Database.MigrateURL())
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	defer m.Close()

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(intArg(2))
	case "force":
		err = m.Force(intArg(2))
	case "version":
		v, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			log.Fatalf("version: %v", verr)
		}
		slog.Info("schema version", "version", v, "dirty", dirty)
		return
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}

	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("no change")
		return
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}

	v, dirty, _ := m.Version()
	slog.Info("migrations applied", "command", os.Args[1], "version", v, "dirty", dirty)
}

func intArg(i int) int {
	if len(os.Args) <= i {
		log.Fatalf("%s requires a numeric argument", os.Args[1])
	}
	n, err := strconv.Atoi(os.Args[i])
	if err != nil {
		log.Fatalf("invalid number %q: %v", os.Args[i], err)
	}
	return n
}
