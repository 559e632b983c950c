package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID             int       `bun:",pk,nullzero" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Name           string    `bun:",nullzero" json:"name"`
	SortName       string    `bun:",nullzero" json:"sort_name"`
	AudiobookCount int       `bun:",scanonly" json:"audiobook_count"`
}
