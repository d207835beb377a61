package rating

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Entry is one group's scores for a user: the overall score plus optional
// per-category scores keyed by category name.
type Entry struct {
	All        int
	Categories map[string]int
}

// Record maps group id to its entry. Groups absent from the record sit at
// the base score.
type Record map[string]Entry

// Get returns the entry for groupID, defaulting to the base score.
func (r Record) Get(groupID string) Entry {
	if e, ok := r[groupID]; ok {
		return e
	}
	return Entry{All: BaseScore}
}

// MarshalJSON writes the entry as a flat object: {"all": n, "<cat>": n}.
func (e Entry) MarshalJSON() ([]byte, error) {
	flat := make(map[string]int, len(e.Categories)+1)
	flat["all"] = e.All
	for cat, score := range e.Categories {
		flat[cat] = score
	}
	return json.Marshal(flat)
}

// UnmarshalJSON accepts either the flat object form or, for records written
// by early versions of the system, a bare number meaning the overall score.
// Normalizing here keeps the legacy shape out of every consumer.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*e = Entry{All: n}
		return nil
	}

	var flat map[string]int
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("decode rating entry: %w", err)
	}
	out := Entry{All: BaseScore}
	for key, score := range flat {
		if key == "all" {
			out.All = score
			continue
		}
		if out.Categories == nil {
			out.Categories = make(map[string]int)
		}
		out.Categories[key] = score
	}
	*e = out
	return nil
}

// DecodeRecord parses a stored rating document. Empty input yields an empty
// record.
func DecodeRecord(doc []byte) (Record, error) {
	if len(doc) == 0 {
		return Record{}, nil
	}
	var r Record
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, fmt.Errorf("decode rating record: %w", err)
	}
	if r == nil {
		r = Record{}
	}
	return r, nil
}

// EncodeRecord serializes a rating document.
func EncodeRecord(r Record) ([]byte, error) {
	doc, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode rating record: %w", err)
	}
	return doc, nil
}
