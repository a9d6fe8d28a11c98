package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv points every path the CLI touches at a temp dir.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("CIVICS_DB", filepath.Join(dir, "civics.db"))
	t.Setenv("CIVICS_LOG", filepath.Join(dir, "civics.log"))
	t.Setenv("CIVICS_SESSION_TOKEN", filepath.Join(dir, "session.jwt"))
	t.Setenv("CIVICS_AUTH_SECRET", "")
	for _, k := range []string{"CIVICS_LLM_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append(args, "--env-file=missing.env", "--db="))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestQuestionsCount_SeedsCatalog(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "questions", "count")
	require.NoError(t, err)
	assert.NotEqual(t, "0", strings.TrimSpace(out))
}

func TestQuestionsImport(t *testing.T) {
	dir := setupEnv(t)

	before, err := execute(t, "questions", "count")
	require.NoError(t, err)

	file := filepath.Join(dir, "extra.json")
	doc := `{"questions":[{"question_number":9001,"category":"Extra","question":"Name a test question.","answers":["This one"]}]}`
	require.NoError(t, os.WriteFile(file, []byte(doc), 0o600))

	out, err := execute(t, "questions", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 questions.")

	after, err := execute(t, "questions", "count")
	require.NoError(t, err)
	assert.NotEqual(t, strings.TrimSpace(before), strings.TrimSpace(after))

	out, err = execute(t, "questions", "list", "--category", "extra", "--answers")
	require.NoError(t, err)
	assert.Contains(t, out, "Name a test question.")
	assert.Contains(t, out, "This one")
}

func TestQuestionsImport_RejectsBadFile(t *testing.T) {
	dir := setupEnv(t)

	file := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"questions":[]}`), 0o600))

	_, err := execute(t, "questions", "import", file)
	assert.Error(t, err)
}

func TestAuthFlow(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "auth", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")

	out, err = execute(t, "auth", "signup", "Ada@Example.com", "--password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")

	_, err = execute(t, "auth", "login", "ada@example.com", "--password", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", err.Error())

	out, err = execute(t, "auth", "login", "ada@example.com", "--password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as ada@example.com")

	out, err = execute(t, "auth", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", strings.TrimSpace(out))

	out, err = execute(t, "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")

	out, err = execute(t, "auth", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
}

func TestExplain_DisabledWithoutProvider(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "explain", "1")
	assert.Error(t, err)

	_, err = execute(t, "explain", "zero")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "civics")
}
