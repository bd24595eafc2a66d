package guildconfig

import (
	"errors"
	"testing"
)

func TestDefaultSchemaIsValid(t *testing.T) {
	schema := DefaultSchema()
	if err := schema.Validate(); err != nil {
		t.Fatalf("default schema invalid: %v", err)
	}
	name, ok := schema.FieldByKey("name")
	if !ok {
		t.Fatal("default schema missing name field")
	}
	if !name.Required {
		t.Error("default name field should be required")
	}
}

func TestSchemaValidateRejectsDuplicateKeys(t *testing.T) {
	schema := Schema{
		{Key: "name", Label: "Name", Style: StyleShort, Required: true, MaxLength: 100},
		{Key: "name", Label: "Name again", Style: StyleShort, MaxLength: 100},
	}
	if err := schema.Validate(); !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("expected ErrInvalidForm, got %v", err)
	}
}

func TestSchemaValidateEnforcesFieldCap(t *testing.T) {
	schema := DefaultSchema()
	var err error
	schema, err = schema.WithField(Field{Key: "hobby", Label: "Hobby", Style: StyleShort, MaxLength: 100})
	if err != nil {
		t.Fatalf("fifth field should be allowed: %v", err)
	}
	if _, err = schema.WithField(Field{Key: "extra", Label: "Extra", Style: StyleShort, MaxLength: 100}); !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("sixth field should be rejected, got %v", err)
	}
}

func TestFieldValidateBounds(t *testing.T) {
	cases := []struct {
		name  string
		field Field
	}{
		{"empty key", Field{Label: "X", Style: StyleShort, MaxLength: 100}},
		{"bad key charset", Field{Key: "face claim", Label: "X", Style: StyleShort, MaxLength: 100}},
		{"bad style", Field{Key: "x", Label: "X", Style: "medium", MaxLength: 100}},
		{"max_length too small", Field{Key: "x", Label: "X", Style: StyleShort, MaxLength: MinFieldLength - 1}},
		{"max_length too large", Field{Key: "x", Label: "X", Style: StyleShort, MaxLength: MaxFieldLength + 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := (Schema{tc.field}).Validate(); !errors.Is(err, ErrInvalidForm) {
				t.Fatalf("expected ErrInvalidForm, got %v", err)
			}
		})
	}
}

func TestSchemaValidateRejectsEmpty(t *testing.T) {
	if err := (Schema{}).Validate(); !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("expected ErrInvalidForm, got %v", err)
	}
}

func TestWithoutField(t *testing.T) {
	schema := DefaultSchema()
	next, removed := schema.WithoutField("age")
	if !removed {
		t.Fatal("age should have been removed")
	}
	if _, ok := next.FieldByKey("age"); ok {
		t.Error("age still present after removal")
	}
	if len(next) != len(schema)-1 {
		t.Errorf("expected %d fields, got %d", len(schema)-1, len(next))
	}

	if _, removed = schema.WithoutField("nosuch"); removed {
		t.Error("removing an absent key should report false")
	}
}
