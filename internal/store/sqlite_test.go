package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/aucplan/coursegraph/internal/catalog"
	"github.com/aucplan/coursegraph/internal/pipeline"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := OpenArchive(context.Background(), filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSaveRunAndRunEdges(t *testing.T) {
	t.Parallel()

	a := openTestArchive(t)
	ctx := context.Background()

	courses, _ := pipeline.New().Process([]catalog.Course{
		{Title: "CSCE 2301 - Digital Design (3 cr.)", Prerequisites: "CSCE 1101"},
		{Title: "CSCE 3301 - Computer Organization (3 cr.)", Prerequisites: "CSCE 1101"},
		{Title: "CSCE 1101 - Fundamentals of Computing (3 cr.)"},
	})

	runID, err := a.SaveRun(ctx, courses)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if runID == 0 {
		t.Fatal("SaveRun returned zero run id")
	}

	edges, err := a.RunEdges(ctx, runID, "prereq")
	if err != nil {
		t.Fatalf("RunEdges: %v", err)
	}
	want := [][2]string{
		{"CSCE2301", "CSCE1101"},
		{"CSCE3301", "CSCE1101"},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("prereq edges = %v, want %v", edges, want)
	}

	coreqs, err := a.RunEdges(ctx, runID, "coreq")
	if err != nil {
		t.Fatalf("RunEdges coreq: %v", err)
	}
	if len(coreqs) != 0 {
		t.Errorf("coreq edges = %v, want none", coreqs)
	}
}

func TestSaveRun_SeparateRuns(t *testing.T) {
	t.Parallel()

	a := openTestArchive(t)
	ctx := context.Background()

	courses, _ := pipeline.New().Process([]catalog.Course{
		{Title: "CSCE 2301 - Digital Design (3 cr.)", Prerequisites: "CSCE 1101"},
		{Title: "CSCE 1101 - Fundamentals of Computing (3 cr.)"},
	})

	first, err := a.SaveRun(ctx, courses)
	if err != nil {
		t.Fatalf("first SaveRun: %v", err)
	}
	second, err := a.SaveRun(ctx, courses)
	if err != nil {
		t.Fatalf("second SaveRun: %v", err)
	}
	if first == second {
		t.Fatalf("both runs got id %d", first)
	}

	// Each run keeps its own edges.
	for _, runID := range []int64{first, second} {
		edges, err := a.RunEdges(ctx, runID, "prereq")
		if err != nil {
			t.Fatalf("RunEdges(%d): %v", runID, err)
		}
		if len(edges) != 1 {
			t.Errorf("run %d has %d prereq edges, want 1", runID, len(edges))
		}
	}
}

func TestOpenArchive_Reopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "archive.db")
	ctx := context.Background()

	a, err := OpenArchive(ctx, path)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	runID, err := a.SaveRun(ctx, []catalog.Course{{Title: "CSCE 1101 - Fundamentals (3 cr.)"}})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The schema DDL must be idempotent across reopens.
	b, err := OpenArchive(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()

	edges, err := b.RunEdges(ctx, runID, "prereq")
	if err != nil {
		t.Fatalf("RunEdges after reopen: %v", err)
	}
	if len(edges) != 0 {
		t.Errorf("edges = %v, want none", edges)
	}
}
