package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/rs/zerolog"
)

const (
	embeddedDB       = "denials"
	embeddedUser     = "postgres"
	embeddedPassword = "postgres"
)

// Embedded is an ephemeral Postgres instance scoped to one analyst
// session. Its data directory lives under a temp dir that is removed
// on Stop, so nothing outlives the session.
type Embedded struct {
	pg  *embeddedpostgres.EmbeddedPostgres
	dir string

	// DSN connects to the embedded instance.
	DSN string
}

// StartEmbedded boots an embedded Postgres on the given port with a
// throwaway data directory.
func StartEmbedded(port uint32, log zerolog.Logger) (*Embedded, error) {
	dir, err := os.MkdirTemp("", "denialdash-pg-*")
	if err != nil {
		return nil, fmt.Errorf("create embedded data dir: %w", err)
	}

	pg := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(port).
			Database(embeddedDB).
			Username(embeddedUser).
			Password(embeddedPassword).
			Version(embeddedpostgres.V16).
			DataPath(filepath.Join(dir, "data")).
			RuntimePath(filepath.Join(dir, "runtime")).
			StartTimeout(60 * time.Second),
	)

	log.Info().Uint32("port", port).Str("dir", dir).Msg("starting embedded postgres")
	if err := pg.Start(); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("start embedded postgres: %w", err)
	}

	return &Embedded{
		pg:  pg,
		dir: dir,
		DSN: fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
			embeddedUser, embeddedPassword, port, embeddedDB),
	}, nil
}

// Stop shuts the instance down and deletes its data directory.
func (e *Embedded) Stop() error {
	err := e.pg.Stop()
	if rmErr := os.RemoveAll(e.dir); err == nil {
		err = rmErr
	}
	return err
}
