package attribute

import (
	"database/sql"
)

// Type is the value type tag of an attribute row.
type Type int

const (
	TypeString  Type = 1
	TypeInteger Type = 2
	TypeDate    Type = 3
	TypeBoolean Type = 4
)

// Row is one typed attribute as stored in the project attribute database.
// Only the value column matching Type is meaningful.
type Row struct {
	Shortname    string
	Type         Type
	StringValue  sql.NullString
	IntegerValue sql.NullInt64
	DateValue    sql.NullTime
	BooleanValue sql.NullBool
}

// FromRows converts typed rows into a Set.
//
// Empty strings and NULL integers are dropped. Dates and booleans are kept
// even when NULL (as nil). Rows with an unknown type tag are stored as nil,
// which the resolver treats as absent.
func FromRows(rows []Row) Set {
	s := make(Set, len(rows))
	for _, r := range rows {
		switch r.Type {
		case TypeString:
			if r.StringValue.Valid && r.StringValue.String != "" {
				s[r.Shortname] = r.StringValue.String
			}
		case TypeInteger:
			if r.IntegerValue.Valid {
				s[r.Shortname] = r.IntegerValue.Int64
			}
		case TypeDate:
			if r.DateValue.Valid {
				s[r.Shortname] = r.DateValue.Time
			} else {
				s[r.Shortname] = nil
			}
		case TypeBoolean:
			if r.BooleanValue.Valid {
				s[r.Shortname] = r.BooleanValue.Bool
			} else {
				s[r.Shortname] = nil
			}
		default:
			s[r.Shortname] = nil
		}
	}
	return s
}
