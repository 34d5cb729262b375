package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRequiredAttribute is returned when a required attribute is absent.
	ErrMissingRequiredAttribute = errors.New("missing required attribute")

	// ErrInvalidAttributeValue is returned when a required attribute cannot
	// be parsed or is out of range.
	ErrInvalidAttributeValue = errors.New("invalid attribute value")
)

// AttributeError reports a fatal problem with one attribute.
type AttributeError struct {
	// Key is the attribute name.
	Key string

	// Value is the raw value, nil if the attribute was missing.
	Value any

	// Reason describes what was wrong with the value.
	Reason string

	// Err is ErrMissingRequiredAttribute or ErrInvalidAttributeValue.
	Err error
}

func (e *AttributeError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("attribute %s: %v", e.Key, e.Err)
	}
	msg := fmt.Sprintf("attribute %s = %#v: %v", e.Key, e.Value, e.Err)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *AttributeError) Unwrap() error {
	return e.Err
}

// Default records a substituted fallback for an optional attribute.
type Default struct {
	// Attribute is the attribute name.
	Attribute string `json:"attribute"`

	// Value is the raw value found, nil if the attribute was missing.
	Value any `json:"value,omitempty"`

	// Reason is "missing", "unrecognized" or "invalid".
	Reason string `json:"reason"`

	// Substituted describes the fallback that was applied.
	Substituted string `json:"substituted"`
}

func (d Default) String() string {
	if d.Value == nil {
		return fmt.Sprintf("%s %s: %s", d.Attribute, d.Reason, d.Substituted)
	}
	return fmt.Sprintf("%s %s (%v): %s", d.Attribute, d.Reason, d.Value, d.Substituted)
}
