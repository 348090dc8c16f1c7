package promotions

import (
	"errors"
	"fmt"
)

// Form field names, as used in the wire entity.
const (
	FieldID            = "id"
	FieldTitle         = "title"
	FieldPromotionType = "promotion_type"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
	FieldActive        = "active"
)

// Active form values. An empty Active field means "unset" and is distinct from false.
const (
	ActiveTrue  = "true"
	ActiveFalse = "false"
)

// Form holds the raw text of every field of the promotion form.
type Form struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	PromotionType string `json:"promotion_type"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Active        string `json:"active"`

	// InvalidDates names the date fields showing a raw value that could not be normalized.
	InvalidDates []string `json:"invalid_dates,omitempty"`
}

// CreatePayload is the body of a create request.
type CreatePayload struct {
	Title         string `json:"title"`
	PromotionType string `json:"promotion_type"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Active        bool   `json:"active"`
}

// UpdatePayload is the body of an update request. Unlike CreatePayload, Active
// carries the form text as-is ("true", "false" or "").
type UpdatePayload struct {
	Title         string `json:"title"`
	PromotionType string `json:"promotion_type"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Active        string `json:"active"`
}

// CreatePayload reads the form into a create request. Any Active value other
// than exactly "true", including unset, becomes false.
func (f Form) CreatePayload() CreatePayload {
	return CreatePayload{
		Title:         f.Title,
		PromotionType: f.PromotionType,
		StartDate:     f.StartDate,
		EndDate:       f.EndDate,
		Active:        f.Active == ActiveTrue,
	}
}

// UpdatePayload reads the form into an update request.
func (f Form) UpdatePayload() UpdatePayload {
	return UpdatePayload{
		Title:         f.Title,
		PromotionType: f.PromotionType,
		StartDate:     f.StartDate,
		EndDate:       f.EndDate,
		Active:        f.Active,
	}
}

// Filters reads the search inputs from the form.
func (f Form) Filters() Filters {
	return Filters{
		Title:         f.Title,
		PromotionType: f.PromotionType,
		Active:        f.Active,
	}
}

// Apply writes p into the form. Dates are normalized; a date that cannot be
// normalized is shown raw, listed in InvalidDates and reported in the
// returned error. The rest of the form is written regardless.
func (f *Form) Apply(p Promotion) error {
	f.ID = p.ID.String()
	f.Title = p.Title
	f.PromotionType = p.PromotionType
	f.InvalidDates = nil

	var errs []error
	var err error
	if f.StartDate, err = DisplayDate(p.StartDate); err != nil {
		f.InvalidDates = append(f.InvalidDates, FieldStartDate)
		errs = append(errs, fmt.Errorf("%s: %w", FieldStartDate, err))
	}
	if f.EndDate, err = DisplayDate(p.EndDate); err != nil {
		f.InvalidDates = append(f.InvalidDates, FieldEndDate)
		errs = append(errs, fmt.Errorf("%s: %w", FieldEndDate, err))
	}

	if p.Active {
		f.Active = ActiveTrue
	} else {
		f.Active = ActiveFalse
	}
	return errors.Join(errs...)
}

// Clear empties every field except ID.
func (f *Form) Clear() {
	f.Title = ""
	f.PromotionType = ""
	f.StartDate = ""
	f.EndDate = ""
	f.Active = ""
	f.InvalidDates = nil
}

// Reset empties every field including ID.
func (f *Form) Reset() {
	f.Clear()
	f.ID = ""
}

// Clone returns a copy that shares no memory with f.
func (f Form) Clone() Form {
	if f.InvalidDates != nil {
		f.InvalidDates = append([]string(nil), f.InvalidDates...)
	}
	return f
}
