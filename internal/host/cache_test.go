package host

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxandria/ledger/internal/cache"
	"github.com/alxandria/ledger/internal/contract"
)

func newCachedTestHost(t *testing.T) (*Host, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	params := contract.DefaultParams()
	params.Instantiator = testAdmin
	params.PayoutAddress = testPayout

	h, err := New(openTestDB(t), contract.New(params), Options{
		ChainID:         "uni-6",
		ContractAddress: testContract,
		Validator:       NewBech32Validator("juno"),
		Cache:           cache.NewWithClient(client, time.Minute),
		Clock:           func() time.Time { return testGenesis },
	})
	require.NoError(t, err)
	return h, mr
}

func TestCachedReadsFollowCommits(t *testing.T) {
	ctx := context.Background()
	h, mr := newCachedTestHost(t)
	instantiate(t, h)
	id := createPost(t, h, testAlice, "Rome")

	post, err := h.GetPost(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "text of Rome", post.Text)
	assert.NotEmpty(t, mr.Keys())

	// repeated reads are served from the cache and stay identical
	again, err := h.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, post, again)

	page, err := h.ListPosts(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, page, 1)

	_, err = h.Execute(ctx, testBob, fee(contract.EditPostFee), contract.ExecuteMsg{
		EditPost: &contract.EditPostMsg{PostID: id, ExternalID: testLink, Text: "rebuilt", Tags: []string{"history"}},
	})
	require.NoError(t, err)

	edited, err := h.GetPost(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, edited)
	assert.Equal(t, "rebuilt", edited.Text)
	require.NotNil(t, edited.Editor)
	assert.Equal(t, testBob, *edited.Editor)

	second := createPost(t, h, testCarol, "Carthage")
	page, err = h.ListPosts(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, second, page[1].PostID)
}

func TestRejectedRequestKeepsCacheGeneration(t *testing.T) {
	ctx := context.Background()
	h, mr := newCachedTestHost(t)
	instantiate(t, h)

	gen, err := mr.Get("alxandria:generation")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	_, err = h.Execute(ctx, testMallory, nil, contract.ExecuteMsg{Withdraw: &contract.WithdrawMsg{}})
	require.ErrorIs(t, err, contract.ErrUnauthorized)

	gen, err = mr.Get("alxandria:generation")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
}
