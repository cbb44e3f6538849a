//go:build cgo_sqlite

package session

// CGO SQLite driver using mattn/go-sqlite3, selected with
// go build -tags cgo_sqlite (requires CGO_ENABLED=1).

import (
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver
)

const (
	driverName = "sqlite3"
	driverType = "cgo"
)

func sqliteDSN(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL",
		path, busyTimeout.Milliseconds())
}
