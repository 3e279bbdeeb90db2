package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BackupSuffix is appended to the collection path when Save preserves the
// previous file contents.
const BackupSuffix = ".backup"

// Load reads a course collection from a JSON file and validates it against
// the embedded collection schema. Load failures are batch-fatal; no partial
// collection is ever returned.
func Load(path string) ([]Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	if err := ValidateCollection(data); err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}

	var courses []Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return courses, nil
}

// Save writes a course collection to path. The previous file, if any, is
// first copied to path plus BackupSuffix, and the new contents are fully
// serialized to a temporary file before an atomic rename, so the original
// input is never overwritten by a partially written output.
func Save(path string, courses []Course) error {
	if _, err := os.Stat(path); err == nil {
		if err := copyFile(path, path+BackupSuffix); err != nil {
			return fmt.Errorf("catalog: back up %s: %w", path, err)
		}
	}

	data, err := json.MarshalIndent(courses, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: encode collection: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("catalog: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("catalog: write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("catalog: close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("catalog: replace %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
