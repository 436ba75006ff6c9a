package memory

import (
	"context"
	"path/filepath"
	"testing"

	core "github.com/ethanbaker/legal-assistant/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "memory.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store, err := NewStore(db)
	require.NoError(t, err)

	return store
}

func TestStore_UpsertOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "user-1", core.KeyName, "Max"))
	require.NoError(t, store.Upsert(ctx, "user-1", core.KeyName, "Lex"))

	facts, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []core.Fact{{Key: core.KeyName, Value: "Lex"}}, facts)
}

func TestStore_GetOrdersByKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "user-1", "preference_1700000000002", "second"))
	require.NoError(t, store.Upsert(ctx, "user-1", core.KeyName, "Max"))
	require.NoError(t, store.Upsert(ctx, "user-1", "preference_1700000000001", "first"))
	require.NoError(t, store.Upsert(ctx, "user-1", core.KeyConversationCtx, `["remember"]`))

	facts, err := store.Get(ctx, "user-1")
	require.NoError(t, err)

	keys := make([]string, 0, len(facts))
	for _, fact := range facts {
		keys = append(keys, fact.Key)
	}
	assert.Equal(t, []string{
		core.KeyConversationCtx,
		core.KeyName,
		"preference_1700000000001",
		"preference_1700000000002",
	}, keys)

	assert.Equal(t, []string{"first", "second"}, core.Fold(facts).Preferences)
}

func TestStore_FactsAreUserScoped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "user-1", core.KeyName, "Max"))
	require.NoError(t, store.Upsert(ctx, "user-2", core.KeyName, "Ada"))

	facts, err := store.Get(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, []core.Fact{{Key: core.KeyName, Value: "Ada"}}, facts)

	facts, err = store.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestStore_WithExtractor(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	extractor := core.NewExtractor(store)

	for _, utterance := range []string{
		"remember the hearing is on the 3rd",
		"I prefer memos over emails",
		"call you Counsel",
	} {
		require.NoError(t, extractor.Extract(ctx, "user-1", utterance, ""))
	}

	facts, err := store.Get(ctx, "user-1")
	require.NoError(t, err)

	mem := core.Fold(facts)
	assert.Equal(t, "Counsel", mem.Name)
	assert.Equal(t, []string{"I prefer memos over emails"}, mem.Preferences)
	assert.Equal(t, []string{"remember the hearing is on the 3rd"}, mem.Context)
}
