package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Audiobook struct {
	bun.BaseModel `bun:"table:audiobooks,alias:ab"`

	ID              int        `bun:",pk,nullzero" json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Title           string     `bun:",nullzero" json:"title"`
	Description     *string    `json:"description,omitempty"`
	Narrator        *string    `json:"narrator,omitempty"`
	DurationSeconds *float64   `json:"duration_seconds,omitempty"`
	CoverURL        *string    `json:"cover_url,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`

	ChapterCount int `bun:",scanonly" json:"chapter_count"`

	// Relations
	Genres  []*AudiobookGenre  `bun:"rel:has-many,join:id=audiobook_id" json:"genres,omitempty"`
	Tags    []*AudiobookTag    `bun:"rel:has-many,join:id=audiobook_id" json:"tags,omitempty"`
	Authors []*AudiobookAuthor `bun:"rel:has-many,join:id=audiobook_id" json:"authors,omitempty"`
}

type AudiobookGenre struct {
	bun.BaseModel `bun:"table:audiobook_genres,alias:abg"`

	ID          int    `bun:",pk,nullzero" json:"id"`
	AudiobookID int    `bun:",nullzero" json:"audiobook_id"`
	GenreID     int    `bun:",nullzero" json:"genre_id"`
	Genre       *Genre `bun:"rel:belongs-to,join:genre_id=id" json:"genre,omitempty"`
}

type AudiobookTag struct {
	bun.BaseModel `bun:"table:audiobook_tags,alias:abt"`

	ID          int  `bun:",pk,nullzero" json:"id"`
	AudiobookID int  `bun:",nullzero" json:"audiobook_id"`
	TagID       int  `bun:",nullzero" json:"tag_id"`
	Tag         *Tag `bun:"rel:belongs-to,join:tag_id=id" json:"tag,omitempty"`
}

type AudiobookAuthor struct {
	bun.BaseModel `bun:"table:audiobook_authors,alias:aba"`

	ID          int     `bun:",pk,nullzero" json:"id"`
	AudiobookID int     `bun:",nullzero" json:"audiobook_id"`
	AuthorID    int     `bun:",nullzero" json:"author_id"`
	Author      *Author `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
}
