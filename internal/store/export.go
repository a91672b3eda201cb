package store

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Document is the export file shape: self-describing, one record per snippet.
type Document struct {
	ExportedAt time.Time `json:"exported_at"`
	Snippets   []Record  `json:"snippets"`
}

// Export writes every snippet to w as an indented JSON document, in display
// order.
func (s *Store) Export(w io.Writer) error {
	snips, err := s.List(Filter{})
	if err != nil {
		return err
	}

	doc := Document{ExportedAt: s.now().UTC(), Snippets: make([]Record, 0, len(snips))}
	for _, snip := range snips {
		doc.Snippets = append(doc.Snippets, snip.Record())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("store: export: %w", err)
	}
	return nil
}

// Import reads a document produced by Export and inserts each record as a
// new entity: fresh ids, positions appended after the current maximum.
// Records are walked bottom-up so the document's display order survives the
// append. Returns the number of snippets imported.
func (s *Store) Import(r io.Reader) (int, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return 0, fmt.Errorf("store: import: %w", err)
	}

	n := 0
	for i := len(doc.Snippets) - 1; i >= 0; i-- {
		d, err := doc.Snippets[i].Draft()
		if err != nil {
			return n, fmt.Errorf("store: import: %w", err)
		}
		if _, err := s.Insert(d, doc.Snippets[i].Label); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
