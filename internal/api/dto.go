package api

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Note    string `json:"note" example:"Projects/Roadmap" validate:"required"`
	Content string `json:"content" example:"# Roadmap\nQ3 goals" validate:"required"`
}

// UpdateNoteRequest is the request body for replacing a note's content.
type UpdateNoteRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// MoveNoteRequest is the request body for moving or renaming a note.
type MoveNoteRequest struct {
	OldNote     string `json:"old_note" example:"Inbox/Draft" validate:"required"`
	NewNote     string `json:"new_note" example:"Projects/Draft" validate:"required"`
	UpdateLinks *bool  `json:"update_links,omitempty" example:"true"`
}
