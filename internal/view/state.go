// Package view holds what the user sees: the promotion form, the search
// results table and the flash message.
package view

import (
	"github.com/Togather-Foundation/promotions-console/internal/domain/promotions"
)

// State is the complete visible state of the console.
type State struct {
	Form  promotions.Form `json:"form"`
	Table Table           `json:"table"`
	Flash Flash           `json:"flash"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{
		Form:  s.Form.Clone(),
		Table: s.Table.Clone(),
		Flash: s.Flash,
	}
}
