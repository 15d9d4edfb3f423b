// Package importer turns external documents into a partial snapshot for
// merging. Parsers never touch the store; an error means nothing is merged.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/utils"
)

var (
	ErrEmptyImport       = errors.New("import contains no habits, todos or journal entries")
	ErrUnsupportedFormat = errors.New("unsupported import format")
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return FormatMarkdown, nil
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s (use .md, .csv or .json)", ErrUnsupportedFormat, filepath.Ext(path))
}

// ParseFile reads path in the format implied by its extension.
func ParseFile(path string) (models.PartialSnapshot, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return models.PartialSnapshot{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return models.PartialSnapshot{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()
	return Parse(f, format)
}

// Parse reads r in the given format and checks the result.
func Parse(r io.Reader, format Format) (models.PartialSnapshot, error) {
	var (
		p   models.PartialSnapshot
		err error
	)
	switch format {
	case FormatMarkdown:
		p, err = parseMarkdown(r)
	case FormatCSV:
		p, err = parseCSV(r)
	case FormatJSON:
		p, err = parseJSON(r)
	default:
		return models.PartialSnapshot{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return models.PartialSnapshot{}, err
	}
	if err := check(&p); err != nil {
		return models.PartialSnapshot{}, err
	}
	return p, nil
}

// check drops blank journal entries, validates keys and rejects an import
// that carries nothing.
func check(p *models.PartialSnapshot) error {
	for date, content := range p.Journal {
		if !utils.IsValidDateKey(date) {
			return fmt.Errorf("journal entry has invalid date %q (expected YYYY-MM-DD)", date)
		}
		if models.IsBlank(content) {
			delete(p.Journal, date)
		}
	}
	for _, h := range p.Habits {
		if h.Month != "" && !utils.IsValidMonthKey(h.Month) {
			return fmt.Errorf("habit %q has invalid month %q (expected YYYY-MM)", h.Name, h.Month)
		}
		for _, d := range h.CompletedDates {
			if !utils.IsValidDateKey(d) {
				return fmt.Errorf("habit %q has invalid date %q (expected YYYY-MM-DD)", h.Name, d)
			}
		}
	}
	for _, t := range p.Todos {
		if !t.Type.Valid() {
			return fmt.Errorf("todo %q has unknown type %q", t.Text, t.Type)
		}
	}
	if p.IsEmpty() {
		return ErrEmptyImport
	}
	return nil
}
