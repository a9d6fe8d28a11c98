package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Setting is a key/value pair for app-level state such as the token
// signing secret.
type Setting struct {
	ent.Schema
}

func (Setting) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("key"),
		field.Text("value"),
		field.Int64("updated_at"),
	}
}
