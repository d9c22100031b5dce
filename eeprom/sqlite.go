package eeprom

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const schemaCells = `
CREATE TABLE IF NOT EXISTS eeprom_cells (
  addr  INTEGER PRIMARY KEY,
  value INTEGER NOT NULL
);`

// SQLite stores one row per written cell. Missing rows read as Erased.
// Each Put is its own autocommit statement, so it is durable on return.
type SQLite struct {
	db   *sql.DB
	size int
}

func OpenSQLite(path string, size int) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=FULL")
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open sqlite store %s", path)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaCells); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "unable to create eeprom_cells table")
	}
	return &SQLite{db: db, size: size}, nil
}

func (s *SQLite) Get(addr int) (byte, error) {
	if err := checkAddr(s, addr); err != nil {
		return 0, err
	}
	var v int
	err := s.db.QueryRow(`SELECT value FROM eeprom_cells WHERE addr = ?`, addr).Scan(&v)
	if err == sql.ErrNoRows {
		return Erased, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "unable to read cell %d", addr)
	}
	return byte(v), nil
}

func (s *SQLite) Put(addr int, v byte) error {
	if err := checkAddr(s, addr); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO eeprom_cells(addr, value) VALUES(?, ?)
ON CONFLICT(addr) DO UPDATE SET value = excluded.value`, addr, int(v))
	if err != nil {
		return errors.Wrapf(err, "unable to write cell %d", addr)
	}
	return nil
}

func (s *SQLite) Size() int {
	return s.size
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
