package guildconfig

import (
	"fmt"
	"regexp"
)

// Field styles map to the two Discord text input styles.
const (
	StyleShort     = "short"
	StyleParagraph = "paragraph"
)

// Discord modals accept at most five text inputs.
const MaxFields = 5

const (
	MinFieldLength = 20
	MaxFieldLength = 2000
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Field describes one input of a guild's application form.
type Field struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Style     string `json:"style"`
	Required  bool   `json:"required"`
	MaxLength int    `json:"max_length"`
	Default   string `json:"default,omitempty"`
}

// Schema is the ordered field list presented to applicants.
type Schema []Field

// DefaultSchema is the form used by guilds that never configured their own.
// It is never written to the store implicitly.
func DefaultSchema() Schema {
	return Schema{
		{Key: "name", Label: "Name", Style: StyleShort, Required: true, MaxLength: 100},
		{Key: "age", Label: "Age", Style: StyleShort, Required: false, MaxLength: 20},
		{Key: "face_claim", Label: "Face Claim", Style: StyleShort, Required: false, MaxLength: 100},
		{Key: "occupation", Label: "Occupation", Style: StyleShort, Required: false, MaxLength: 100},
	}
}

func (f Field) validate() error {
	if f.Key == "" {
		return fmt.Errorf("%w: field key must not be empty", ErrInvalidForm)
	}
	if !keyPattern.MatchString(f.Key) {
		return fmt.Errorf("%w: field key %q must be alphanumeric/underscore", ErrInvalidForm, f.Key)
	}
	if f.Style != StyleShort && f.Style != StyleParagraph {
		return fmt.Errorf("%w: field %q style must be %q or %q", ErrInvalidForm, f.Key, StyleShort, StyleParagraph)
	}
	if f.MaxLength < MinFieldLength || f.MaxLength > MaxFieldLength {
		return fmt.Errorf("%w: field %q max_length must be between %d and %d", ErrInvalidForm, f.Key, MinFieldLength, MaxFieldLength)
	}
	return nil
}

// Validate checks field constraints, the field cap and key uniqueness.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: form must have at least one field", ErrInvalidForm)
	}
	if len(s) > MaxFields {
		return fmt.Errorf("%w: form is limited to %d fields", ErrInvalidForm, MaxFields)
	}

	seen := make(map[string]struct{}, len(s))
	for _, f := range s {
		if err := f.validate(); err != nil {
			return err
		}
		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("%w: duplicate field key %q", ErrInvalidForm, f.Key)
		}
		seen[f.Key] = struct{}{}
	}
	return nil
}

// WithField returns a copy of the schema with the field appended.
func (s Schema) WithField(f Field) (Schema, error) {
	next := make(Schema, 0, len(s)+1)
	next = append(next, s...)
	next = append(next, f)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}

// WithoutField returns a copy of the schema with the keyed field removed and
// whether the key was present.
func (s Schema) WithoutField(key string) (Schema, bool) {
	next := make(Schema, 0, len(s))
	found := false
	for _, f := range s {
		if f.Key == key {
			found = true
			continue
		}
		next = append(next, f)
	}
	return next, found
}

// FieldByKey looks up a field by key.
func (s Schema) FieldByKey(key string) (Field, bool) {
	for _, f := range s {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}
