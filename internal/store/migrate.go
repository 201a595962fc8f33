package store

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// RunMigrations executes the embedded .sql files in lexical order.
// Every statement is written to be re-runnable.
func RunMigrations(ctx context.Context, p *Postgres) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := migrations.ReadFile("migrations/" + e.Name())
		if err != nil {
			return err
		}
		if _, err := p.pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		log.Info().Str("module", "store").Str("file", e.Name()).Msg("migration applied")
	}
	return nil
}
