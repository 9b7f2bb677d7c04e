// migrate aplica o revierte el esquema de PostgreSQL con las migraciones embebidas.
//
// Uso:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down [pasos]
//	go run ./cmd/migrate version
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/holaaposmx/Controdealmacenfrio/internal/infrastructure/postgres"
	"github.com/holaaposmx/Controdealmacenfrio/pkg/config"
	"github.com/holaaposmx/Controdealmacenfrio/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("migrate")

	pool, err := postgres.NewPool(context.Background(), cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	switch cmd {
	case "up":
		err = postgres.Migrate(pool, log)
	case "down":
		steps := 0
		if len(os.Args) > 2 {
			if steps, err = strconv.Atoi(os.Args[2]); err != nil || steps < 0 {
				log.Fatal().Str("pasos", os.Args[2]).Msg("número de pasos inválido")
			}
		}
		err = postgres.MigrateDown(pool, steps, log)
	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = postgres.MigrationVersion(pool)
		if err == nil {
			fmt.Printf("versión %d (dirty=%t)\n", version, dirty)
		}
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q: use up, down [pasos] o version\n", cmd)
		pool.Close()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", cmd).Msg("migración")
	}
}
