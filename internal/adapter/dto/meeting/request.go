package meeting

// CreateMeetingRequest represents the form fields sent along the uploaded file
type CreateMeetingRequest struct {
	Title       string `form:"title" validate:"required,min=1,max=255"`
	Description string `form:"description" validate:"max=2000"`
	Language    string `form:"language" validate:"required,min=2,max=35"`
}

// SearchRequest represents query parameters for full-text search
type SearchRequest struct {
	Query string `query:"q" validate:"required,min=1,max=500"`
	Size  int    `query:"size" validate:"omitempty,min=1,max=100"`
}
