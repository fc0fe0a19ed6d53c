//go:build cgo

package history

import _ "github.com/mattn/go-sqlite3"

const driverName = "sqlite3"

func dsn(path string) string {
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}
