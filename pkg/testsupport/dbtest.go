package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

var memoryDBs atomic.Int64

// NewSQLiteMemoryDB opens a fresh in-memory SQLite database. Every call gets
// its own named database, shared by the connections of the returned pool.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:lute-test-%d?mode=memory&cache=shared", memoryDBs.Add(1))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
