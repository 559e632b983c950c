package chapters

type ListChaptersQuery struct {
	AudiobookID int `query:"audiobook_id" json:"audiobook_id" validate:"required,min=1"`
	Page        int `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
}

type CreateChapterPayload struct {
	AudiobookID     int      `json:"audiobook_id" validate:"required,min=1"`
	Title           string   `json:"title" mod:"trim" validate:"required,min=1,max=500"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty" validate:"omitempty,min=0"`
	AudioURL        *string  `json:"audio_url,omitempty" validate:"omitempty,max=2000"`
	// ChapterNumber is optional; when omitted the server assigns the next
	// available number for the audiobook.
	ChapterNumber *int `json:"chapter_number,omitempty" validate:"omitempty,min=1"`
}

type UpdateChapterPayload struct {
	Title           *string  `json:"title,omitempty" mod:"trim" validate:"omitempty,min=1,max=500"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty" validate:"omitempty,min=0"`
	AudioURL        *string  `json:"audio_url,omitempty" validate:"omitempty,max=2000"`
	ChapterNumber   *int     `json:"chapter_number,omitempty" validate:"omitempty,min=1"`
}
