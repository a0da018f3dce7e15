package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Row is one raw regulatory entry as delivered by the offline data export
type Row struct {
	ID          ClauseID      `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Keywords    []string      `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Specialties SpecialtyList `json:"specialties,omitempty" yaml:"specialties,omitempty"`
	Research    string        `json:"research,omitempty" yaml:"research,omitempty"`

	// malformed marks a source entry that did not decode as a row
	malformed bool
}

// ClauseID is a clause number that tolerates malformed source values.
// Anything that is not a positive integer decodes to 0 and the row is
// rejected by the builder instead of failing the whole decode.
type ClauseID int

// UnmarshalJSON accepts numbers and numeric strings
func (c *ClauseID) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		*c = 0
		return nil
	}
	*c = parseClauseID(raw)
	return nil
}

// UnmarshalYAML accepts numbers and numeric strings
func (c *ClauseID) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		*c = 0
		return nil
	}
	*c = parseClauseID(raw)
	return nil
}

func parseClauseID(raw interface{}) ClauseID {
	switch v := raw.(type) {
	case float64:
		if v > 0 && v == math.Trunc(v) && v <= math.MaxInt32 {
			return ClauseID(v)
		}
	case int:
		if v > 0 {
			return ClauseID(v)
		}
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), ".")))
		if err == nil && n > 0 {
			return ClauseID(n)
		}
	}
	return 0
}

// SpecialtyList holds pre-split specialist entries. It decodes from either
// a list or a single comma/semicolon separated string. A nil list means the
// source gave no specialties field and they are looked up in the title.
type SpecialtyList []string

// UnmarshalJSON accepts a string or an array of strings
func (s *SpecialtyList) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		*s = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = normalizeList(list)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = splitList(text)
		return nil
	}
	*s = nil
	return nil
}

// UnmarshalYAML accepts a string or a sequence of strings
func (s *SpecialtyList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			*s = nil
			return nil
		}
		*s = normalizeList(list)
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*s = nil
			return nil
		}
		*s = splitList(node.Value)
	default:
		*s = nil
	}
	return nil
}

// splitList splits a raw specialist string. An empty string yields an
// empty, non-nil list so that the title is not scanned.
func splitList(text string) SpecialtyList {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	return normalizeList(parts)
}

func normalizeList(list []string) SpecialtyList {
	out := make(SpecialtyList, 0, len(list))
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
