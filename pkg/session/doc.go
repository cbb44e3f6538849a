// Package session implements the server-side session store.
//
// Store satisfies gorilla/sessions' Store interface. Session values live in
// a Backend; the cookie carries only the session ID, signed with
// securecookie. Two backends are provided: MemoryBackend for single-process
// development and SQLiteBackend for persistence across restarts.
//
// Pruner deletes expired sessions on a cron schedule:
//
//	backend, err := session.NewSQLiteBackend(session.SQLiteBackendConfig{DBPath: "data/sessions.db"})
//	store := session.NewStore(backend, 24*time.Hour, []byte(secret))
//	pruner := session.NewPruner(backend, "@every 10m")
//	err = pruner.Start(ctx)
package session
