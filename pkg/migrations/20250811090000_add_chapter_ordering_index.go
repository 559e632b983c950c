package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		// Chapter pages are windows sorted by chapter_number; the index keeps
		// pagination queries from scanning the whole audiobook. Not unique:
		// the midpoint fallback can legitimately produce duplicate numbers.
		_, err := db.Exec(`CREATE INDEX ix_chapters_audiobook_number ON chapters(audiobook_id, chapter_number)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("DROP INDEX IF EXISTS ix_chapters_audiobook_number")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
