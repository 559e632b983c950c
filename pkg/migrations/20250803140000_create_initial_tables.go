package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		queries := []string{
			`CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				username TEXT NOT NULL COLLATE NOCASE UNIQUE,
				email TEXT,
				password_hash TEXT NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT TRUE
			)`,
			`CREATE TABLE audiobooks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				title TEXT NOT NULL,
				description TEXT,
				narrator TEXT,
				duration_seconds REAL,
				cover_url TEXT,
				published_at TIMESTAMPTZ
			)`,
			`CREATE TABLE chapters (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				audiobook_id INTEGER NOT NULL REFERENCES audiobooks(id) ON DELETE CASCADE,
				chapter_number INTEGER NOT NULL,
				title TEXT NOT NULL,
				description TEXT,
				duration_seconds REAL,
				audio_url TEXT
			)`,
			`CREATE TABLE genres (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL COLLATE NOCASE UNIQUE
			)`,
			`CREATE TABLE tags (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL COLLATE NOCASE UNIQUE
			)`,
			`CREATE TABLE authors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL COLLATE NOCASE UNIQUE,
				sort_name TEXT NOT NULL
			)`,
			`CREATE TABLE audiobook_genres (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				audiobook_id INTEGER NOT NULL REFERENCES audiobooks(id) ON DELETE CASCADE,
				genre_id INTEGER NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
				UNIQUE(audiobook_id, genre_id)
			)`,
			`CREATE TABLE audiobook_tags (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				audiobook_id INTEGER NOT NULL REFERENCES audiobooks(id) ON DELETE CASCADE,
				tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
				UNIQUE(audiobook_id, tag_id)
			)`,
			`CREATE TABLE audiobook_authors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				audiobook_id INTEGER NOT NULL REFERENCES audiobooks(id) ON DELETE CASCADE,
				author_id INTEGER NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
				UNIQUE(audiobook_id, author_id)
			)`,
		}

		for _, q := range queries {
			if _, err := db.Exec(q); err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		tables := []string{
			"audiobook_authors",
			"audiobook_tags",
			"audiobook_genres",
			"authors",
			"tags",
			"genres",
			"chapters",
			"audiobooks",
			"users",
		}
		for _, table := range tables {
			if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
