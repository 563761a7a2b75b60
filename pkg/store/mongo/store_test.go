package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pairtree/pkg/store"
)

func TestStore(t *testing.T) {
	uri := os.Getenv("PAIRTREE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PAIRTREE_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Open(ctx, Options{URI: uri, Database: "pairtree_test", Collection: "t_" + uuid.NewString()})
	require.NoError(t, err)
	defer func() {
		_ = s.coll.Drop(ctx)
		_ = s.Close(ctx)
	}()

	parent := "A"
	records := []store.Record{
		{Element: "A", Seq: 0, IDs: "value"},
		{Element: "B", ParentID: &parent, Seq: 1, IDs: "value"},
	}

	_, err = s.Load(ctx, "t")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Save(ctx, "t", records))
	require.NoError(t, s.Save(ctx, "t", records))
	got, err := s.Load(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, records, got)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, names)

	require.NoError(t, s.Delete(ctx, "t"))
	assert.ErrorIs(t, s.Delete(ctx, "t"), store.ErrNotFound)
}
