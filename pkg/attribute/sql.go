package attribute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrProjectNotFound is returned when no project matches the given number.
var ErrProjectNotFound = errors.New("project not found")

// SQLSource reads project attributes from the project database. Projects
// are looked up by number in the project table; their attributes are the
// additionalattribute rows referencing the project id.
type SQLSource struct {
	// DB is the open database handle.
	DB *sql.DB

	// Driver is the database/sql driver name. It selects the placeholder
	// style ("$1" for postgres, "?" otherwise).
	Driver string

	// NumberSuffix is appended to the project number before lookup.
	NumberSuffix string

	// Shortnames restricts the query to the named attributes. Empty means all.
	Shortnames []string

	// Logger receives debug output. If nil, logging is disabled.
	Logger *slog.Logger
}

// Load implements Source.
func (s *SQLSource) Load(ctx context.Context, project string) (Set, error) {
	if project == "" {
		return nil, fmt.Errorf("no project number given")
	}
	number := project + s.NumberSuffix

	var pid int64
	err := s.DB.QueryRowContext(ctx,
		"SELECT id FROM project WHERE number = "+s.placeholder(1), number).Scan(&pid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrProjectNotFound, number)
	}
	if err != nil {
		return nil, fmt.Errorf("query project: %w", err)
	}

	query := `SELECT shortname, type, stringvalue, integervalue, datevalue, booleanvalue
		FROM additionalattribute WHERE projectid = ` + s.placeholder(1)
	args := []any{pid}
	if len(s.Shortnames) > 0 {
		ph := make([]string, len(s.Shortnames))
		for i, name := range s.Shortnames {
			ph[i] = s.placeholder(i + 2)
			args = append(args, name)
		}
		query += " AND shortname IN (" + strings.Join(ph, ", ") + ")"
	}
	query += " ORDER BY shortname"

	rs, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attributes: %w", err)
	}
	defer rs.Close()

	var rows []Row
	for rs.Next() {
		var r Row
		if err := rs.Scan(&r.Shortname, &r.Type, &r.StringValue, &r.IntegerValue,
			&r.DateValue, &r.BooleanValue); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		rows = append(rows, r)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}

	s.debugLog("project attributes loaded", "project", number, "id", pid, "rows", len(rows))
	return FromRows(rows), nil
}

func (s *SQLSource) placeholder(n int) string {
	if s.Driver == "postgres" || s.Driver == "pgx" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *SQLSource) debugLog(msg string, args ...any) {
	if s.Logger != nil {
		s.Logger.Debug(msg, args...)
	}
}
