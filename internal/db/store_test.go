package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alxandria/ledger/internal/contract"
	"github.com/alxandria/ledger/internal/models"
	"github.com/alxandria/ledger/pkg/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := New(&config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"}, "error")
	require.NoError(t, err)
	require.NoError(t, d.Migrate(context.Background()))
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(&config.DatabaseConfig{Driver: "mysql", URL: "x"}, "info")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestStoreSingletons(t *testing.T) {
	ctx := context.Background()
	store := NewStore(openTestDB(t).DB)

	cfg, err := store.LoadConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	require.NoError(t, store.SaveConfig(ctx, contract.Config{Admin: "juno1admin"}))
	require.NoError(t, store.SaveConfig(ctx, contract.Config{Admin: "juno1other"}))
	cfg, err = store.LoadConfig(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "juno1other", cfg.Admin)

	v, err := store.LoadVersion(ctx)
	require.NoError(t, err)
	assert.Nil(t, v)
	require.NoError(t, store.SaveVersion(ctx, contract.ContractVersion{Contract: "rome-contract", Version: "0.1.0"}))
	v, err = store.LoadVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, &contract.ContractVersion{Contract: "rome-contract", Version: "0.1.0"}, v)

	last, err := store.LoadLastPostID(ctx)
	require.NoError(t, err)
	assert.Zero(t, last)
	require.NoError(t, store.SaveLastPostID(ctx, 7))
	last, err = store.LoadLastPostID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), last)
}

func TestStorePostRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(openTestDB(t).DB)

	created := time.Unix(1_700_000_000, 0).UTC()
	edited := created.Add(time.Minute)
	editor := "juno1bob"
	post := &contract.Post{
		PostID:       1,
		PostTitle:    "Title",
		ExternalID:   "https://alxandria.infura-ipfs.io/ipfs/Qm",
		Text:         "body",
		Tags:         []string{"a", "b"},
		Author:       "juno1alice",
		CreationDate: created,
		LastEditDate: &edited,
		Editor:       &editor,
	}
	require.NoError(t, store.SavePost(ctx, post))

	got, err := store.LoadPost(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, post.PostTitle, got.PostTitle)
	assert.Equal(t, post.Tags, got.Tags)
	assert.True(t, got.CreationDate.Equal(created))
	require.NotNil(t, got.LastEditDate)
	assert.True(t, got.LastEditDate.Equal(edited))
	assert.Equal(t, &editor, got.Editor)
	assert.Nil(t, got.Deleter)
	assert.Nil(t, got.DeletionDate)

	missing, err := store.LoadPost(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, missing)

	// overwrite in place
	deleter := "juno1admin"
	got.Deleter = &deleter
	got.DeletionDate = &edited
	got.Tags = []string{"Deleted"}
	require.NoError(t, store.SavePost(ctx, got))

	again, err := store.LoadPost(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Deleted"}, again.Tags)
	assert.True(t, again.IsDeleted())

	n, err := store.posts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.posts.CountDeleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStoreRangePosts(t *testing.T) {
	ctx := context.Background()
	store := NewStore(openTestDB(t).DB)

	for id := uint64(1); id <= 5; id++ {
		require.NoError(t, store.SavePost(ctx, &contract.Post{
			PostID:       id,
			Author:       "juno1alice",
			CreationDate: time.Unix(int64(id), 0),
		}))
	}

	ids := func(posts []contract.Post) []uint64 {
		out := make([]uint64, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.PostID)
		}
		return out
	}

	start := uint64(2)
	tests := []struct {
		name       string
		startAfter *uint64
		limit      int
		want       []uint64
	}{
		{"from start", nil, 3, []uint64{1, 2, 3}},
		{"after cursor", &start, 2, []uint64{3, 4}},
		{"past end", &start, 10, []uint64{3, 4, 5}},
		{"zero limit", nil, 0, []uint64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := store.RangePosts(ctx, tt.startAfter, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(posts))
		})
	}
}

func TestStoreRollsBackWithTransaction(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t)

	err := d.Transaction(func(tx *gorm.DB) error {
		store := NewStore(tx)
		require.NoError(t, store.SaveLastPostID(ctx, 1))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	last, err := NewStore(d.DB).LoadLastPostID(ctx)
	require.NoError(t, err)
	assert.Zero(t, last)
}

func TestBalanceAndTransferRepositories(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t).DB)
	balances := NewBalanceRepository(repo)
	transfers := NewTransferRepository(repo)

	require.NoError(t, balances.Set(ctx, "juno1c", "ujunox", 10))
	require.NoError(t, balances.Set(ctx, "juno1c", "uatom", 3))
	require.NoError(t, balances.Set(ctx, "juno1c", "uosmo", 0))

	amt, err := balances.Get(ctx, "juno1c", "ujunox")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), amt)

	all, err := balances.All(ctx, "juno1c")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "uatom", all[0].Denom)
	assert.Equal(t, "ujunox", all[1].Denom)

	now := time.Now().UTC()
	require.NoError(t, transfers.Create(ctx, &models.Transfer{TxID: "tx", Height: 1, To: "juno1c", Denom: "ujunox", Amount: 10, CreatedAt: now}))
	require.NoError(t, transfers.Create(ctx, &models.Transfer{TxID: "tx", Height: 1, From: "juno1c", To: "juno1d", Denom: "ujunox", Amount: 4, CreatedAt: now}))
	list, err := transfers.ListByTx(ctx, "tx")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Empty(t, list[0].From)
	assert.Equal(t, "juno1d", list[1].To)
}
