package store

import (
	"testing"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnTypes(t *schema.Table) map[string]field.Type {
	out := make(map[string]field.Type, len(t.Columns))
	for _, c := range t.Columns {
		out[c.Name] = c.Type
	}
	return out
}

func TestTablesFromEntities(t *testing.T) {
	assert.Equal(t, map[string]field.Type{
		"id":         field.TypeString,
		"number":     field.TypeInt,
		"category":   field.TypeString,
		"prompt":     field.TypeString,
		"answers":    field.TypeJSON,
		"updated_at": field.TypeInt64,
	}, columnTypes(QuestionsTable))
	assert.Equal(t, map[string]field.Type{
		"id":            field.TypeString,
		"email":         field.TypeString,
		"password_hash": field.TypeString,
		"created_at":    field.TypeInt64,
	}, columnTypes(UsersTable))
	assert.Equal(t, map[string]field.Type{
		"key":        field.TypeString,
		"value":      field.TypeString,
		"updated_at": field.TypeInt64,
	}, columnTypes(SettingsTable))

	for _, tbl := range Tables {
		require.Len(t, tbl.PrimaryKey, 1, tbl.Name)
	}
	assert.Equal(t, "id", QuestionsTable.PrimaryKey[0].Name)
	assert.Equal(t, "key", SettingsTable.PrimaryKey[0].Name, "storage key renames the settings id")

	require.Len(t, QuestionsTable.Indexes, 1)
	idx := QuestionsTable.Indexes[0]
	assert.Equal(t, "question_number", idx.Name)
	require.Len(t, idx.Columns, 1)
	assert.Equal(t, "number", idx.Columns[0].Name)

	email, ok := UsersTable.Column("email")
	require.True(t, ok)
	assert.True(t, email.Unique)

	category, _ := QuestionsTable.Column("category")
	assert.Equal(t, "", category.Default)
	prompt, _ := QuestionsTable.Column("prompt")
	assert.Greater(t, prompt.Size, int64(255), "prompt is a text column")
}

func TestMigratedColumns(t *testing.T) {
	s := openTestStore(t)

	for _, tbl := range Tables {
		rows, err := s.DB().Query("SELECT name FROM pragma_table_info(?)", tbl.Name)
		require.NoError(t, err)
		var got []string
		for rows.Next() {
			var name string
			require.NoError(t, rows.Scan(&name))
			got = append(got, name)
		}
		require.NoError(t, rows.Err())
		rows.Close()

		want := make([]string, len(tbl.Columns))
		for i, c := range tbl.Columns {
			want[i] = c.Name
		}
		assert.ElementsMatch(t, want, got, tbl.Name)
	}
}
