package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Chapter is one chapter of an audiobook. ChapterNumber is the sole ordering
// key; it is not guaranteed to be contiguous, and reordering mutates it.
type Chapter struct {
	bun.BaseModel `bun:"table:chapters,alias:ch"`

	ID              int       `bun:",pk,nullzero" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	AudiobookID     int       `bun:",notnull" json:"audiobook_id"`
	ChapterNumber   int       `bun:",notnull" json:"chapter_number"`
	Title           string    `bun:",notnull" json:"title"`
	Description     *string   `json:"description,omitempty"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	AudioURL        *string   `json:"audio_url,omitempty"`

	// Relations
	Audiobook *Audiobook `bun:"rel:belongs-to,join:audiobook_id=id" json:"-"`
}
