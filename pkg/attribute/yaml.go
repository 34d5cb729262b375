package attribute

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// file is the YAML representation of an attribute set. Either a plain
// mapping or a list of typed rows may be given; rows override the mapping.
type file struct {
	Project    string         `yaml:"project,omitempty"`
	Attributes map[string]any `yaml:"attributes,omitempty"`
	Rows       []rowFile      `yaml:"rows,omitempty"`
}

type rowFile struct {
	Shortname    string     `yaml:"shortname"`
	Type         Type       `yaml:"type"`
	StringValue  *string    `yaml:"stringvalue,omitempty"`
	IntegerValue *int64     `yaml:"integervalue,omitempty"`
	DateValue    *time.Time `yaml:"datevalue,omitempty"`
	BooleanValue *bool      `yaml:"booleanvalue,omitempty"`
}

func (r rowFile) row() Row {
	out := Row{Shortname: r.Shortname, Type: r.Type}
	if r.StringValue != nil {
		out.StringValue = sql.NullString{String: *r.StringValue, Valid: true}
	}
	if r.IntegerValue != nil {
		out.IntegerValue = sql.NullInt64{Int64: *r.IntegerValue, Valid: true}
	}
	if r.DateValue != nil {
		out.DateValue = sql.NullTime{Time: *r.DateValue, Valid: true}
	}
	if r.BooleanValue != nil {
		out.BooleanValue = sql.NullBool{Bool: *r.BooleanValue, Valid: true}
	}
	return out
}

// Parse reads an attribute set from YAML bytes.
func Parse(data []byte) (Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse attributes: %w", err)
	}

	s := make(Set, len(f.Attributes)+len(f.Rows))
	for k, v := range f.Attributes {
		s[k] = v
	}
	if len(f.Rows) > 0 {
		rows := make([]Row, 0, len(f.Rows))
		for _, r := range f.Rows {
			if r.Shortname == "" {
				return nil, fmt.Errorf("attribute row without shortname")
			}
			rows = append(rows, r.row())
		}
		for k, v := range FromRows(rows) {
			s[k] = v
		}
	}
	return s, nil
}

// ParseFile reads an attribute set from a YAML file.
func ParseFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Marshal encodes a set as a YAML attribute mapping.
func Marshal(s Set) ([]byte, error) {
	return yaml.Marshal(&file{Attributes: s})
}

// FileSource reads the attribute set from a YAML file. The project argument
// of Load is ignored.
type FileSource struct {
	Path string
}

// Load implements Source.
func (f FileSource) Load(_ context.Context, _ string) (Set, error) {
	return ParseFile(f.Path)
}
