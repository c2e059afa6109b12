package report

import (
	"database/sql"
	"os"

	// SQLite driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// RecordSQLite stores the report in name+".sqlite3" and returns the file
// name. An existing file is never overwritten.
func RecordSQLite(name string, r *Report) (string, error) {
	filename := name + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		return "", errors.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open %s", filename)
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return "", err
	}

	tx, err := db.Begin()
	if err != nil {
		return "", errors.Wrap(err, "failed to begin transaction")
	}
	if err := insertReport(tx, r); err != nil {
		_ = tx.Rollback()
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "failed to commit results")
	}

	return filename, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`create table run
		(
			run_id     varchar(32) not null primary key,
			trace      text,
			engine     varchar(16),
			total      integer not null,
			elapsed_ns integer not null
		);`,
		`create table result
		(
			run_id     varchar(32) not null,
			family     varchar(32) not null,
			model      varchar(32) not null,
			param      integer,
			hits       integer not null,
			total      integer not null,
			misses     integer,
			loads      integer,
			stores     integer,
			evictions  integer,
			prefetches integer,
			hit_rate   real
		);`,
		`create table derived
		(
			run_id varchar(32) not null,
			model  varchar(32) not null,
			metric varchar(64) not null,
			value  real
		);`,
		`create index result_family_index on result (family);`,
	}

	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return errors.Wrap(err, "failed to create table")
		}
	}
	return nil
}

func insertReport(tx *sql.Tx, r *Report) error {
	_, err := tx.Exec(
		"insert into run values (?, ?, ?, ?, ?)",
		r.RunID, r.Trace, r.Engine, r.Total, r.Elapsed.Nanoseconds())
	if err != nil {
		return errors.Wrap(err, "failed to insert run")
	}

	result, err := tx.Prepare(
		"insert into result values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "failed to prepare result insert")
	}
	defer result.Close()

	derived, err := tx.Prepare("insert into derived values (?, ?, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "failed to prepare derived insert")
	}
	defer derived.Close()

	for _, e := range r.Entries {
		_, err := result.Exec(r.RunID, e.Family, e.Name, e.Param, e.Hits,
			e.Total, e.Misses, e.Loads, e.Stores, e.Evictions, e.Prefetches,
			e.HitRate)
		if err != nil {
			return errors.Wrapf(err, "failed to insert result %s", e.Name)
		}

		for _, m := range r.Metrics {
			if _, err := derived.Exec(r.RunID, e.Name, m, e.Derived[m]); err != nil {
				return errors.Wrapf(err, "failed to insert %s of %s", m, e.Name)
			}
		}
	}

	return nil
}
