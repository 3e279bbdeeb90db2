package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aucplan/coursegraph/internal/catalog"
)

const (
	insertCourse = `INSERT INTO courses (code, title, course_title, difficulty, raw_requisites)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET
			title = EXCLUDED.title,
			course_title = EXCLUDED.course_title,
			difficulty = EXCLUDED.difficulty,
			raw_requisites = EXCLUDED.raw_requisites`

	insertEdge = `INSERT INTO requisite_edges (source, target, kind)
		VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
)

// Exporter writes a processed catalog to Postgres using batched inserts.
type Exporter struct {
	Pool *pgxpool.Pool
}

// NewExporter connects a pgx pool for the given DSN.
func NewExporter(ctx context.Context, dsn string) (*Exporter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect postgres: %w", err)
	}
	return &Exporter{Pool: pool}, nil
}

// Close releases the pool.
func (e *Exporter) Close() {
	e.Pool.Close()
}

func exportCallback(pgconn.CommandTag) error {
	return nil
}

// ExportCourses upserts every course row in one batch. Courses without a
// join key are skipped; they cannot be keyed.
func (e *Exporter) ExportCourses(ctx context.Context, courses []catalog.Course) error {
	if len(courses) == 0 {
		return nil
	}

	batch := pgx.Batch{}
	for _, c := range courses {
		code := c.Code()
		if code == "" {
			continue
		}
		raw := ""
		if c.PrerequisiteAST != nil {
			raw = c.PrerequisiteAST.RawText
		}
		batch.Queue(insertCourse, code, c.Title, c.CourseTitle, c.DifficultyLevel, raw).
			Exec(exportCallback)
	}

	if err := e.Pool.SendBatch(ctx, &batch).Close(); err != nil {
		return fmt.Errorf("store: export courses: %w", err)
	}
	return nil
}

// ExportEdges inserts the reverse dependency edges of every course in one
// batch, as (dependent, target, kind) rows.
func (e *Exporter) ExportEdges(ctx context.Context, courses []catalog.Course) error {
	batch := pgx.Batch{}
	queued := 0

	for _, c := range courses {
		code := c.Code()
		if code == "" {
			continue
		}
		for _, dependent := range c.IsPrerequisiteFor {
			batch.Queue(insertEdge, dependent, code, "prereq").Exec(exportCallback)
			queued++
		}
		for _, dependent := range c.IsCorequisiteFor {
			batch.Queue(insertEdge, dependent, code, "coreq").Exec(exportCallback)
			queued++
		}
	}

	if queued == 0 {
		return nil
	}
	if err := e.Pool.SendBatch(ctx, &batch).Close(); err != nil {
		return fmt.Errorf("store: export edges: %w", err)
	}
	return nil
}
