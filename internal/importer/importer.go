// Package importer reads and writes decks in the file formats learners bring
// them in: YAML documents and spreadsheets.
package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/gelos/backend/internal/domain/deck"
)

var ErrUnknownFormat = errors.New("unknown deck file format")

type Format string

const (
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// Document is the YAML shape of a deck.
type Document struct {
	Name  string      `yaml:"name"`
	Cards []CardEntry `yaml:"cards"`
}

type CardEntry struct {
	Front string `yaml:"front"`
	Back  string `yaml:"back"`
}

// Result is a parsed deck plus the entries that could not become cards.
type Result struct {
	Deck    *deck.Deck
	Skipped []string
}

// DetectFormat picks the format from a file name or a content type.
func DetectFormat(name string) (Format, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "spreadsheetml"):
		return FormatXLSX, nil
	case strings.Contains(lower, "yaml"):
		return FormatYAML, nil
	}
	switch filepath.Ext(lower) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Read parses r in the given format. name is the deck name for formats that
// do not carry one.
func Read(r io.Reader, format Format, name string) (*Result, error) {
	switch format {
	case FormatYAML:
		return FromYAML(r)
	case FormatXLSX:
		return FromXLSX(r, name)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func FromYAML(r io.Reader) (*Result, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	d, err := deck.New(doc.Name)
	if err != nil {
		return nil, err
	}

	res := &Result{Deck: d}
	for i, c := range doc.Cards {
		if _, err := d.AddCard(c.Front, c.Back); err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("card %d: %v", i+1, err))
		}
	}
	return res, nil
}

// FromXLSX reads the first sheet: column A is the front, column B the back.
// A first row reading "front" in column A is treated as a header.
func FromXLSX(r io.Reader, name string) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	if strings.TrimSpace(name) == "" {
		name = sheets[0]
	}
	d, err := deck.New(name)
	if err != nil {
		return nil, err
	}

	res := &Result{Deck: d}
	for i, row := range rows {
		front, back := cell(row, 0), cell(row, 1)
		if i == 0 && strings.EqualFold(front, "front") {
			continue
		}
		if front == "" && back == "" {
			continue
		}
		if _, err := d.AddCard(front, back); err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("row %d: %v", i+1, err))
		}
	}
	return res, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// WriteYAML encodes d as a Document.
func WriteYAML(w io.Writer, d *deck.Deck) error {
	doc := Document{Name: d.Name, Cards: make([]CardEntry, len(d.Cards))}
	for i, c := range d.Cards {
		doc.Cards[i] = CardEntry{Front: c.Front, Back: c.Back}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
