package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Question is one entry of the civics question pool.
type Question struct {
	ent.Schema
}

func (Question) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Immutable().
			Comment("Stable id derived from the catalog number"),
		field.Int("number").
			Positive().
			Comment("USCIS question number"),
		field.String("category").
			Default(""),
		field.Text("prompt").
			NotEmpty(),
		field.JSON("answers", []string{}).
			Comment("Accepted answers, at least one"),
		field.Int64("updated_at").
			Comment("Unix seconds of the last import"),
	}
}

func (Question) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("number").StorageKey("question_number"),
	}
}
