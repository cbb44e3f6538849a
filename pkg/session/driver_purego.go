//go:build !cgo_sqlite

package session

import (
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

const (
	driverName = "sqlite"
	driverType = "purego"
)

func sqliteDSN(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		path, busyTimeout.Milliseconds())
}
