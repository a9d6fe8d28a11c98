package store

import (
	"fmt"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/VVic23/civics-practice/ent/schema"
)

var (
	// QuestionsTable holds the question pool.
	QuestionsTable = tableOf("questions", entschema.Question{})
	// UsersTable holds local accounts.
	UsersTable = tableOf("users", entschema.User{})
	// SettingsTable is a small key/value table for app-level state.
	SettingsTable = tableOf("settings", entschema.Setting{})

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		QuestionsTable,
		UsersTable,
		SettingsTable,
	}
)

// tableOf lays out the migration table for an entity. The "id" field is
// the primary key. Field defaults computed by functions are left to the
// repositories.
func tableOf(name string, e ent.Interface) *schema.Table {
	t := schema.NewTable(name)
	fields := make(map[string]string)
	for _, f := range e.Fields() {
		d := f.Descriptor()
		if d.Err != nil {
			panic(fmt.Sprintf("store: %s.%s: %v", name, d.Name, d.Err))
		}
		col := &schema.Column{
			Name:     columnName(d),
			Type:     d.Info.Type,
			Size:     int64(d.Size),
			Unique:   d.Unique,
			Nullable: d.Optional,
		}
		switch d.Default.(type) {
		case nil, func() string, func() int64:
		default:
			col.Default = d.Default
		}
		fields[d.Name] = col.Name
		if d.Name == "id" {
			t.AddPrimary(col)
		} else {
			t.AddColumn(col)
		}
	}
	for _, idx := range e.Indexes() {
		d := idx.Descriptor()
		cols := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			cols[i] = fields[f]
		}
		t.AddIndex(d.StorageKey, d.Unique, cols)
	}
	return t
}

func columnName(d *field.Descriptor) string {
	if d.StorageKey != "" {
		return d.StorageKey
	}
	return d.Name
}
