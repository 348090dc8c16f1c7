package view

import (
	"github.com/Togather-Foundation/promotions-console/internal/sanitize"
)

// Flash is the single status message slot. Each Show replaces the previous message.
type Flash struct {
	Text string `json:"message"`
}

// Show replaces the displayed message.
func (f *Flash) Show(message string) {
	f.Text = message
}

func (f Flash) String() string {
	return f.Text
}

// HTML returns the message with any markup stripped.
func (f Flash) HTML() string {
	return sanitize.Text(f.Text)
}
