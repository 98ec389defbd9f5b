package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ide-mentor/mentor-api/internal/catalog"
)

func writeCatalog(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commands.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644), "failed to write catalog fixture")
	return path
}

const sampleCatalog = `question_command_id,question_content,question_test_cases
two-sum,"<p>Sum two numbers.</p>","[1,2] -> 3"
reverse-string,<p>Reverse a string.</p>,abc -> cba
two-sum-ii,<p>Sum two sorted numbers.</p>,"[1,2] -> 3"
`

func TestStoreFind(t *testing.T) {
	ctx := t.Context()

	t.Run("ExactMatch", func(t *testing.T) {
		store := catalog.New(writeCatalog(t, sampleCatalog))

		record, err := store.Find(ctx, "two-sum")
		require.NoError(t, err, "failed to find record")

		assert.Equal(t, "two-sum", record.ID)
		assert.Equal(t, "<p>Sum two numbers.</p>", record.Content)
		assert.Equal(t, "[1,2] -> 3", record.TestCases)
	})

	t.Run("ExactMatchIgnoresCase", func(t *testing.T) {
		store := catalog.New(writeCatalog(t, sampleCatalog))

		record, err := store.Find(ctx, "Reverse-String")
		require.NoError(t, err, "failed to find record")
		assert.Equal(t, "reverse-string", record.ID)
	})

	t.Run("ExactMatchBeatsSubstring", func(t *testing.T) {
		// "two-sum-ii" also contains "two-sum-ii" exactly, but "two-sum"
		// as an identifier must resolve to its own row, not the longer one.
		store := catalog.New(writeCatalog(t, sampleCatalog))

		record, err := store.Find(ctx, "two-sum")
		require.NoError(t, err, "failed to find record")
		assert.Equal(t, "two-sum", record.ID)
	})

	t.Run("SubstringFallbackFirstWins", func(t *testing.T) {
		store := catalog.New(writeCatalog(t, sampleCatalog))

		record, err := store.Find(ctx, "sum")
		require.NoError(t, err, "failed to find record")
		assert.Equal(t, "two-sum", record.ID, "first matching row should win")
	})

	t.Run("TrimsWhitespaceInIDs", func(t *testing.T) {
		store := catalog.New(writeCatalog(t,
			"question_command_id,question_content,question_test_cases\n"+
				"  padded-id  ,<p>x</p>,y\n"))

		record, err := store.Find(ctx, "padded-id")
		require.NoError(t, err, "failed to find record")
		assert.Equal(t, "padded-id", record.ID)
	})

	t.Run("UnknownIdentifier", func(t *testing.T) {
		store := catalog.New(writeCatalog(t, sampleCatalog))

		record, err := store.Find(ctx, "does-not-exist")
		assert.ErrorIs(t, err, catalog.ErrNotFound)
		assert.Nil(t, record)
	})

	t.Run("MissingFile", func(t *testing.T) {
		store := catalog.New(filepath.Join(t.TempDir(), "nope.csv"))

		_, err := store.Find(ctx, "two-sum")
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("EmptyFile", func(t *testing.T) {
		store := catalog.New(writeCatalog(t, ""))

		_, err := store.Find(ctx, "two-sum")
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("MissingColumn", func(t *testing.T) {
		store := catalog.New(writeCatalog(t,
			"question_command_id,question_content\ntwo-sum,<p>x</p>\n"))

		_, err := store.Find(ctx, "two-sum")
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})
}
