package fault

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"
)

// Key identifies a catalog by grid-code standard and unit type.
type Key struct {
	// Standard is the standard identifier, e.g. "4110" or "4120".
	Standard string `json:"standard"`

	// Type is the unit type (1 or 2).
	Type int `json:"type"`
}

// String returns the canonical "<standard>-<type>" form.
func (k Key) String() string {
	return fmt.Sprintf("%s-%d", k.Standard, k.Type)
}

// TableName returns the table name the catalog uses in legacy databases,
// e.g. FAULTS_4110_TYP1.
func (k Key) TableName() string {
	return fmt.Sprintf("FAULTS_%s_TYP%d", k.Standard, k.Type)
}

var (
	keyShortRe = regexp.MustCompile(`^([A-Za-z0-9.]+)\s*[-/ ]\s*(?:typ(?:e)?\s*)?(\d+)$`)
	keyTableRe = regexp.MustCompile(`^FAULTS_([A-Za-z0-9]+)_TYP(\d+)$`)
)

// ParseKey parses "4110-1", "4110/1", "4110 type 1" or "FAULTS_4110_TYP1".
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	m := keyTableRe.FindStringSubmatch(strings.ToUpper(s))
	if m == nil {
		m = keyShortRe.FindStringSubmatch(strings.ToLower(s))
	}
	if m == nil {
		return Key{}, fmt.Errorf("invalid catalog key %q", s)
	}
	typ, err := strconv.Atoi(m[2])
	if err != nil || typ <= 0 {
		return Key{}, fmt.Errorf("invalid catalog type in %q", s)
	}
	return Key{Standard: m[1], Type: typ}, nil
}

// DuplicateIDError is returned when a test number is appended twice.
type DuplicateIDError struct {
	Key Key
	ID  int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("catalog %s: duplicate test id %d", e.Key, e.ID)
}

// Catalog is an ordered set of test definitions with unique ids.
// Insertion order is kept for reporting.
type Catalog struct {
	key   Key
	tests []Test
	index map[int]int
}

// NewCatalog creates an empty catalog.
func NewCatalog(key Key) *Catalog {
	return &Catalog{
		key:   key,
		index: make(map[int]int),
	}
}

// Key returns the catalog key.
func (c *Catalog) Key() Key {
	return c.key
}

// Len returns the number of tests.
func (c *Catalog) Len() int {
	return len(c.tests)
}

// Append adds a test at the end of the catalog.
func (c *Catalog) Append(t Test) error {
	if _, ok := c.index[t.ID]; ok {
		return &DuplicateIDError{Key: c.key, ID: t.ID}
	}
	c.index[t.ID] = len(c.tests)
	c.tests = append(c.tests, t)
	return nil
}

// Get returns the test with the given id.
func (c *Catalog) Get(id int) (Test, bool) {
	i, ok := c.index[id]
	if !ok {
		return Test{}, false
	}
	return c.tests[i], true
}

// Replace swaps the definition stored under t.ID, keeping its position.
func (c *Catalog) Replace(t Test) bool {
	i, ok := c.index[t.ID]
	if !ok {
		return false
	}
	c.tests[i] = t
	return true
}

// Remove deletes the test with the given id.
func (c *Catalog) Remove(id int) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.tests = append(c.tests[:i], c.tests[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.tests); j++ {
		c.index[c.tests[j].ID] = j
	}
	return true
}

// Tests returns a copy of the tests in insertion order.
func (c *Catalog) Tests() []Test {
	out := make([]Test, len(c.tests))
	copy(out, c.tests)
	return out
}

// All iterates over position and test in insertion order.
func (c *Catalog) All() iter.Seq2[int, Test] {
	return func(yield func(int, Test) bool) {
		for i, t := range c.tests {
			if !yield(i, t) {
				return
			}
		}
	}
}
