package roster

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"sam/src-server/model"
	"sam/src-server/utils"

	"github.com/uptrace/bun"
)

// SeedFromCSV loads the faculty roster from a CSV file with a
// name,email,department header. Seeding only happens when the table is
// empty; an already-populated roster is left alone.
func SeedFromCSV(ctx context.Context, db *bun.DB, path string) error {
	count, err := db.
		NewSelect().
		Model((*model.Faculty)(nil)).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("SeedFromCSV: can't count faculty: %w", err)
	}
	if count > 0 {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("SeedFromCSV: roster file not found, starting with an empty roster", "path", path)
			return nil
		}
		return fmt.Errorf("SeedFromCSV: can't open %s: %w", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return fmt.Errorf("SeedFromCSV: can't parse %s: %w", path, err)
	}
	if len(records) < 2 {
		slog.Warn("SeedFromCSV: roster file has no data rows", "path", path)
		return nil
	}

	entries := make([]model.Faculty, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 2 {
			slog.Warn("SeedFromCSV: skipping malformed row", "path", path, "row", i+2)
			continue
		}
		entry := model.Faculty{
			Name:  utils.CleanupString(record[0]),
			Email: record[1],
		}
		if len(record) > 2 {
			entry.Department = record[2]
		}
		if entry.Name == "" || entry.Email == "" {
			slog.Warn("SeedFromCSV: skipping row with blank name or email", "path", path, "row", i+2)
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil
	}

	if _, err := db.
		NewInsert().
		Model(&entries).
		Exec(ctx); err != nil {
		return fmt.Errorf("SeedFromCSV: can't insert faculty: %w", err)
	}
	slog.Info("SeedFromCSV: roster seeded", "path", path, "entries", len(entries))
	return nil
}
