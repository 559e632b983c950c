package audiobooks

type ListAudiobooksQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type CreateAudiobookPayload struct {
	Title           string   `json:"title" mod:"trim" validate:"required,min=1,max=500"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=10000"`
	Narrator        *string  `json:"narrator,omitempty" mod:"trim" validate:"omitempty,max=300"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty" validate:"omitempty,min=0"`
	CoverURL        *string  `json:"cover_url,omitempty" validate:"omitempty,max=2000"`
	PublishedAt     *string  `json:"published_at,omitempty" validate:"omitempty,date"`
	GenreIDs        []int    `json:"genre_ids,omitempty" validate:"omitempty,dive,min=1"`
	TagIDs          []int    `json:"tag_ids,omitempty" validate:"omitempty,dive,min=1"`
	AuthorIDs       []int    `json:"author_ids,omitempty" validate:"omitempty,dive,min=1"`
}

type UpdateAudiobookPayload struct {
	Title           *string  `json:"title,omitempty" mod:"trim" validate:"omitempty,min=1,max=500"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=10000"`
	Narrator        *string  `json:"narrator,omitempty" mod:"trim" validate:"omitempty,max=300"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty" validate:"omitempty,min=0"`
	CoverURL        *string  `json:"cover_url,omitempty" validate:"omitempty,max=2000"`
	PublishedAt     *string  `json:"published_at,omitempty" validate:"omitempty,date"`
	GenreIDs        *[]int   `json:"genre_ids,omitempty" validate:"omitempty,dive,min=1"`
	TagIDs          *[]int   `json:"tag_ids,omitempty" validate:"omitempty,dive,min=1"`
	AuthorIDs       *[]int   `json:"author_ids,omitempty" validate:"omitempty,dive,min=1"`
}
