package store

import (
	"fmt"
	"time"

	"go.klb.dev/shard/internal/classify"
	"go.klb.dev/shard/internal/colorlib"
)

// Record is the serialized form of a snippet, used by the export document
// and the daemon protocol. Colors serialize as their 8-digit-capable hex
// form, which round-trips the RGBA value exactly.
type Record struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Label     string    `json:"label,omitempty"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Color    string `json:"color,omitempty"`
	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`
}

// Record converts a snippet to its serialized form.
func (s Snippet) Record() Record {
	rec := Record{
		ID:        s.ID,
		Kind:      string(s.Kind),
		Label:     s.Label,
		Position:  s.Position,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	switch s.Kind {
	case classify.KindColor:
		rec.Color = s.Color.Hex()
	case classify.KindCode:
		rec.Text = s.Text
		rec.Language = s.Language
	default:
		rec.Text = s.Text
	}
	return rec
}

// Draft rebuilds the classify.Draft a record describes, validating its kind
// and color payload.
func (r Record) Draft() (classify.Draft, error) {
	kind, ok := classify.ParseKind(r.Kind)
	if !ok {
		return classify.Draft{}, fmt.Errorf("store: unknown snippet kind %q", r.Kind)
	}
	d := classify.Draft{Kind: kind, Text: r.Text, Language: r.Language}
	if kind == classify.KindColor {
		c, err := colorlib.Parse(r.Color)
		if err != nil {
			return classify.Draft{}, err
		}
		d.Color = c
	}
	return d, nil
}
