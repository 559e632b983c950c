package authors

type ListAuthorsQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type CreateAuthorPayload struct {
	Name     string  `json:"name" mod:"trim" validate:"required,min=1,max=300"`
	SortName *string `json:"sort_name,omitempty" validate:"omitempty,min=1,max=300"`
}

type UpdateAuthorPayload struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=300"`
	SortName *string `json:"sort_name,omitempty" validate:"omitempty,min=1,max=300"`
}
