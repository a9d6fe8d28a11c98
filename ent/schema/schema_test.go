package schema

import (
	"testing"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

func descriptor(t *testing.T, fields []ent.Field, name string) *field.Descriptor {
	t.Helper()
	for _, f := range fields {
		if d := f.Descriptor(); d.Name == name {
			if d.Err != nil {
				t.Fatalf("field %s: %v", name, d.Err)
			}
			return d
		}
	}
	t.Fatalf("no field %q", name)
	return nil
}

func TestQuestionValidators(t *testing.T) {
	fields := Question{}.Fields()

	number := descriptor(t, fields, "number")
	for _, v := range number.Validators {
		if err := v.(func(int) error)(0); err == nil {
			t.Error("number 0 accepted")
		}
		if err := v.(func(int) error)(47); err != nil {
			t.Errorf("number 47 rejected: %v", err)
		}
	}

	prompt := descriptor(t, fields, "prompt")
	if len(prompt.Validators) == 0 {
		t.Fatal("prompt has no validators")
	}
	if err := prompt.Validators[0].(func(string) error)(""); err == nil {
		t.Error("empty prompt accepted")
	}
}

func TestUserFields(t *testing.T) {
	fields := User{}.Fields()
	if !descriptor(t, fields, "email").Unique {
		t.Error("email should be unique")
	}
	if !descriptor(t, fields, "password_hash").Sensitive {
		t.Error("password hash should be sensitive")
	}
	if d := descriptor(t, Setting{}.Fields(), "id"); d.StorageKey != "key" {
		t.Errorf("setting id stored as %q, want key", d.StorageKey)
	}
}
