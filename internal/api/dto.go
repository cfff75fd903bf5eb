package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/bundleservice"
	"github.com/starford/raido/internal/models"
)

// BundleRequest is the request body for creating or updating a bundle.
type BundleRequest struct {
	Part            string `json:"part"`
	Name            string `json:"name"`
	CommandText     string `json:"command_text"`
	Description     string `json:"description"`
	Keywords        string `json:"keywords"`
	ExpectedOutcome string `json:"expected_outcome"`
	Interpretation  string `json:"interpretation"`
	UpdatedDate     string `json:"updated_date"`
	Todo            string `json:"todo"`
}

// Validate implements request validation.
func (r BundleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Part, validation.Length(0, 100)),
	)
}

func (r BundleRequest) input() bundleservice.BundleInput {
	return bundleservice.BundleInput{
		Part:            r.Part,
		Name:            r.Name,
		CommandText:     r.CommandText,
		Description:     r.Description,
		Keywords:        r.Keywords,
		ExpectedOutcome: r.ExpectedOutcome,
		Interpretation:  r.Interpretation,
		UpdatedDate:     r.UpdatedDate,
		Todo:            r.Todo,
	}
}

// MemoNoteUpdate targets one memo by its 1-based command order.
type MemoNoteUpdate struct {
	Order    int    `json:"order"`
	MemoText string `json:"memo_text"`
	NoteLink string `json:"note_link"`
}

// MemoUpdateRequest is the request body for replacing memo notes.
type MemoUpdateRequest struct {
	Memos []MemoNoteUpdate `json:"memos"`
}

// Validate implements request validation.
func (r MemoUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Memos, validation.Required),
	)
}

func (r MemoUpdateRequest) updates() []models.CommandMemo {
	out := make([]models.CommandMemo, len(r.Memos))
	for i, m := range r.Memos {
		out[i] = models.CommandMemo{Order: m.Order, MemoText: m.MemoText, NoteLink: m.NoteLink}
	}
	return out
}

// LinkRequest is the request body for creating a link entry.
type LinkRequest struct {
	BundleID     int    `json:"bundle_id"`
	CommandOrder int    `json:"command_order"`
	URL          string `json:"url"`
	Description  string `json:"description"`
	Tag          string `json:"tag"`
}

// Validate implements request validation.
func (r LinkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required, validation.Length(1, 2000)),
	)
}

// ProcedureRequest is the request body for adding a tagged procedure record.
type ProcedureRequest struct {
	Code  string `json:"code"`
	Title string `json:"title"`
	Link  string `json:"link"`
	Tag   string `json:"tag"`
}

// Validate implements request validation.
func (r ProcedureRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Tag, validation.Required),
	)
}

// BundleDetail is the full bundle response type (aliased from the domain layer).
type BundleDetail = bundleservice.BundleDetail

// BundleSummary is a lightweight list item (aliased from the domain layer).
type BundleSummary = bundleservice.BundleSummary
