package sql

import (
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	db := initDB(t)

	t.Run("Initialize database extensions", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		var exists bool
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'vector');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "pgvector extension should be created")
	})

	t.Run("Initialize database extensions is idempotent", func(t *testing.T) {
		assert.NoError(t, Init(db.Instance))
		assert.NoError(t, Init(db.Instance))
	})
}

func TestLoadRecordsSql(t *testing.T) {
	db := initDB(t)

	assertFunctionsExist := func(t *testing.T) {
		for _, funcName := range RecordsFunctions {
			var exists bool
			err := db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	}

	t.Run("Load records SQL functions", func(t *testing.T) {
		err := LoadRecordsSql(db.Instance, false)
		assert.NoError(t, err)
		assertFunctionsExist(t)
	})

	t.Run("Load records SQL is idempotent without force", func(t *testing.T) {
		assert.NoError(t, LoadRecordsSql(db.Instance, false))
	})

	t.Run("Load records SQL with force reloads", func(t *testing.T) {
		assert.NoError(t, LoadRecordsSql(db.Instance, true))
		assertFunctionsExist(t)
	})
}

func TestLoadAllSql(t *testing.T) {
	db := initDB(t)

	t.Run("Load all SQL", func(t *testing.T) {
		assert.NoError(t, LoadAllSql(db.Instance, true))
	})

	t.Run("Records table can be created", func(t *testing.T) {
		_, err := db.Instance.Exec(`SELECT init_records($1);`, 3)
		require.NoError(t, err)

		var count int
		require.NoError(t, db.Instance.QueryRow(`SELECT count_records();`).Scan(&count))
		assert.Equal(t, 0, count)
	})
}

func TestCheckFunctions(t *testing.T) {
	db := initDB(t)

	t.Run("Missing function", func(t *testing.T) {
		exist, err := checkFunctions(db.Instance, []string{"function_that_does_not_exist"})
		require.NoError(t, err)
		assert.False(t, exist)
	})
}
