package main

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/fiveletters/internal/catalog"
	"github.com/robalobadob/fiveletters/internal/httpserver"
	"github.com/robalobadob/fiveletters/internal/stats"
	"github.com/robalobadob/fiveletters/internal/store"
)

const sessionTTL = 7 * 24 * time.Hour

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	t, name, err := loadTree(ctx)
	if err != nil {
		return err
	}

	sessions, err := openSessions(getEnv("SESSION_DB_PATH", ""))
	if err != nil {
		return err
	}
	defer sessions.Close()

	// stats history is optional; the service runs without a catalog
	var runs *stats.Store
	db, err := catalog.Open(catalogPath())
	if err != nil {
		log.Warn().Err(err).Msg("catalog unavailable, /stats without history")
	} else {
		defer db.Close()
		runs = stats.NewStore(db)
	}

	srv := httpserver.New(t, sessions, runs, httpserver.Config{
		TreeName:     name,
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		TokenTTL:     time.Duration(getEnvInt("JWT_EXPIRES_DAYS", 14)) * 24 * time.Hour,
	})

	port := servePort
	if port == "" {
		port = getEnv("PORT", "5175")
	}
	log.Info().Str("port", port).Str("tree", name).Msg("starting fiveletters service")
	return srv.Start(ctx, ":"+port)
}

// openSessions returns a BadgerDB store at path, or an in-memory one when
// path is empty.
func openSessions(path string) (store.Store, error) {
	if path == "" {
		return store.NewMemoryStore(), nil
	}
	return store.OpenBadger(path, sessionTTL)
}
