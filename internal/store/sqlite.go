// Package store persists processed catalogs to databases: a local SQLite
// archive of runs for history and inspection, and a Postgres export for
// downstream consumers.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/aucplan/coursegraph/internal/catalog"
)

// schema contains the DDL executed on first open. IF NOT EXISTS makes it
// safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    course_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS courses (
    run_id           INTEGER NOT NULL REFERENCES runs(id),
    code             TEXT NOT NULL,
    title            TEXT NOT NULL,
    course_title     TEXT NOT NULL DEFAULT '',
    difficulty       INTEGER NOT NULL DEFAULT 0,
    raw_requisites   TEXT NOT NULL DEFAULT '',
    parse_error      TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (run_id, code, title)
);

CREATE TABLE IF NOT EXISTS edges (
    run_id INTEGER NOT NULL REFERENCES runs(id),
    source TEXT NOT NULL,
    target TEXT NOT NULL,
    kind   TEXT NOT NULL CHECK (kind IN ('prereq', 'coreq')),
    PRIMARY KEY (run_id, source, target, kind)
);
`

// Archive stores processed catalog runs in a local SQLite database in WAL
// mode.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (or creates) the archive database at dbPath, enables
// WAL mode and a busy timeout, and creates the schema idempotently.
func OpenArchive(ctx context.Context, dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open archive: %w", err)
	}

	// SQLite supports a single writer; one connection avoids SQLITE_BUSY
	// contention between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// SaveRun records one processed catalog as a new run: every course row plus
// the reverse edges reconstructed from the records' edge lists. The whole
// run is written in a single transaction; a failure leaves the archive
// untouched.
func (a *Archive) SaveRun(ctx context.Context, courses []catalog.Course) (int64, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, course_count) VALUES (?, ?)`,
		time.Now().UTC(), len(courses))
	if err != nil {
		return 0, fmt.Errorf("store: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: run id: %w", err)
	}

	insertCourse, err := tx.PrepareContext(ctx, `
		INSERT INTO courses (run_id, code, title, course_title, difficulty, raw_requisites, parse_error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("store: prepare course insert: %w", err)
	}
	defer insertCourse.Close()

	insertEdge, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO edges (run_id, source, target, kind) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("store: prepare edge insert: %w", err)
	}
	defer insertEdge.Close()

	for _, c := range courses {
		raw, parseErr := "", ""
		if c.PrerequisiteAST != nil {
			raw = c.PrerequisiteAST.RawText
			parseErr = c.PrerequisiteAST.Err
		}
		if _, err := insertCourse.ExecContext(ctx,
			runID, c.Code(), c.Title, c.CourseTitle, c.DifficultyLevel, raw, parseErr); err != nil {
			return 0, fmt.Errorf("store: insert course %q: %w", c.Title, err)
		}

		// Edge lists are reverse edges: c.IsPrerequisiteFor holds the
		// dependents of c, so c is the target.
		for _, dependent := range c.IsPrerequisiteFor {
			if _, err := insertEdge.ExecContext(ctx, runID, dependent, c.Code(), "prereq"); err != nil {
				return 0, fmt.Errorf("store: insert prereq edge: %w", err)
			}
		}
		for _, dependent := range c.IsCorequisiteFor {
			if _, err := insertEdge.ExecContext(ctx, runID, dependent, c.Code(), "coreq"); err != nil {
				return 0, fmt.Errorf("store: insert coreq edge: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit run: %w", err)
	}
	return runID, nil
}

// RunEdges returns the reverse edges of a run as (source, target) pairs for
// the given kind, ordered for deterministic output.
func (a *Archive) RunEdges(ctx context.Context, runID int64, kind string) ([][2]string, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT source, target FROM edges WHERE run_id = ? AND kind = ? ORDER BY source, target`,
		runID, kind)
	if err != nil {
		return nil, fmt.Errorf("store: query edges: %w", err)
	}
	defer rows.Close()

	var edges [][2]string
	for rows.Next() {
		var e [2]string
		if err := rows.Scan(&e[0], &e[1]); err != nil {
			return nil, fmt.Errorf("store: scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate edges: %w", err)
	}
	return edges, nil
}
