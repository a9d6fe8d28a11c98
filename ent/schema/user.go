package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// User is a local account.
type User struct {
	ent.Schema
}

func (User) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Immutable(),
		field.String("email").
			Unique().
			Comment("Normalized to lower case"),
		field.String("password_hash").
			Sensitive(),
		field.Int64("created_at").
			Immutable(),
	}
}
