package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Togather-Foundation/promotions-console/internal/domain/promotions"
	"github.com/Togather-Foundation/promotions-console/internal/sanitize"
	"github.com/Togather-Foundation/promotions-console/internal/view"
	"sigs.k8s.io/yaml"
)

// Output formats
const (
	outputText = "text"
	outputYAML = "yaml"
	outputHTML = "html"
)

func checkOutput(format string) error {
	switch format {
	case outputText, outputYAML, outputHTML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, yaml or html)", format)
	}
}

type formField struct {
	label string
	name  string
	value string
}

func formFields(form promotions.Form) []formField {
	return []formField{
		{"ID", promotions.FieldID, form.ID},
		{"Title", promotions.FieldTitle, form.Title},
		{"Type", promotions.FieldPromotionType, form.PromotionType},
		{"Start Date", promotions.FieldStartDate, form.StartDate},
		{"End Date", promotions.FieldEndDate, form.EndDate},
		{"Active", promotions.FieldActive, form.Active},
	}
}

func isInvalid(form promotions.Form, name string) bool {
	for _, invalid := range form.InvalidDates {
		if invalid == name {
			return true
		}
	}
	return false
}

func writeState(out io.Writer, format string, state view.State) error {
	switch format {
	case outputYAML:
		data, err := yaml.Marshal(state)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case outputHTML:
		return writeHTML(out, state)
	default:
		return writeText(out, state)
	}
}

func writeText(out io.Writer, state view.State) error {
	fmt.Fprintln(out, state.Flash.String())
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, field := range formFields(state.Form) {
		value := field.value
		if isInvalid(state.Form, field.name) {
			value += " (unrecognized date)"
		}
		fmt.Fprintf(w, "%s:\t%s\n", field.label, value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if state.Table.Rendered() {
		fmt.Fprintln(out)
		if len(state.Table.Rows) == 0 {
			fmt.Fprintln(out, "No promotions found.")
			return nil
		}
		return state.Table.WriteText(out)
	}
	return nil
}

func writeHTML(out io.Writer, state view.State) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<div id=\"flash_message\">%s</div>\n", state.Flash.HTML())
	b.WriteString("<dl class=\"promotion\">\n")
	for _, field := range formFields(state.Form) {
		fmt.Fprintf(&b, "  <dt>%s</dt><dd id=\"promotion_%s\">%s</dd>\n", field.label, field.name, sanitize.Text(field.value))
	}
	b.WriteString("</dl>\n")
	if table := state.Table.HTML(); table != "" {
		b.WriteString("<div id=\"search_results\">\n")
		b.WriteString(table)
		b.WriteString("\n</div>\n")
	}
	_, err := io.WriteString(out, b.String())
	return err
}
