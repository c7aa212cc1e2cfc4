package contract

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testAdmin    = "juno1w5aespcyddns7y696q9wlch4ehflk2wglu9vv4"
	testAlice    = "juno1qyqszqgpqyqszqgpqyqszqgpqyqszqgpypz92q"
	testBob      = "juno1qgpqyqszqgpqyqszqgpqyqszqgpqyqsz49yqpk"
	testContract = "juno1qszqgpqyqszqgpqyqszqgpqyqszqgpqy59zyvt"
	testLink     = DefaultGatewayPrefix + "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
)

// memStorage is an in-memory Storage used by the contract tests.
type memStorage struct {
	config  *Config
	version *ContractVersion
	lastID  uint64
	posts   map[uint64]Post
}

func newMemStorage() *memStorage {
	return &memStorage{posts: make(map[uint64]Post)}
}

func (m *memStorage) LoadConfig(context.Context) (*Config, error) {
	if m.config == nil {
		return nil, nil
	}
	cfg := *m.config
	return &cfg, nil
}

func (m *memStorage) SaveConfig(_ context.Context, cfg Config) error {
	m.config = &cfg
	return nil
}

func (m *memStorage) LoadVersion(context.Context) (*ContractVersion, error) {
	if m.version == nil {
		return nil, nil
	}
	v := *m.version
	return &v, nil
}

func (m *memStorage) SaveVersion(_ context.Context, v ContractVersion) error {
	m.version = &v
	return nil
}

func (m *memStorage) LoadLastPostID(context.Context) (uint64, error) {
	return m.lastID, nil
}

func (m *memStorage) SaveLastPostID(_ context.Context, id uint64) error {
	m.lastID = id
	return nil
}

func (m *memStorage) LoadPost(_ context.Context, id uint64) (*Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStorage) SavePost(_ context.Context, post *Post) error {
	m.posts[post.PostID] = *post
	return nil
}

func (m *memStorage) RangePosts(_ context.Context, startAfter *uint64, limit int) ([]Post, error) {
	ids := make([]uint64, 0, len(m.posts))
	for id := range m.posts {
		if startAfter == nil || id > *startAfter {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []Post{}
	for _, id := range ids {
		if len(out) >= limit {
			break
		}
		out = append(out, m.posts[id])
	}
	return out, nil
}

type prefixValidator struct{}

func (prefixValidator) AddrValidate(addr string) (string, error) {
	if !strings.HasPrefix(addr, "juno1") || strings.ToLower(addr) != addr {
		return "", InvalidAddress(addr, errors.New("bad prefix"))
	}
	return addr, nil
}

type memBank map[string]Coins

func (b memBank) AllBalances(_ context.Context, addr string) (Coins, error) {
	return b[addr], nil
}

type fixture struct {
	contract *Contract
	store    *memStorage
	bank     memBank
	deps     Deps
	height   uint64
}

func newFixture(t *testing.T, mutate ...func(*Params)) *fixture {
	t.Helper()

	params := DefaultParams()
	for _, fn := range mutate {
		fn(&params)
	}

	f := &fixture{
		contract: New(params),
		store:    newMemStorage(),
		bank:     memBank{},
	}
	f.deps = Deps{Storage: f.store, API: prefixValidator{}, Querier: f.bank}

	_, err := f.contract.Instantiate(context.Background(), f.deps, f.env(), MessageInfo{Sender: testAdmin}, InstantiateMsg{})
	require.NoError(t, err)
	return f
}

func (f *fixture) env() Env {
	f.height++
	return Env{
		Block: BlockInfo{
			Height:  f.height,
			Time:    time.Unix(1_700_000_000+int64(f.height), 0).UTC(),
			ChainID: "uni-6",
		},
		Contract: ContractInfo{Address: testContract},
	}
}

func (f *fixture) execute(sender string, funds Coins, msg ExecuteMsg) (*Response, Env, error) {
	env := f.env()
	resp, err := f.contract.Execute(context.Background(), f.deps, env, MessageInfo{Sender: sender, Funds: funds}, msg)
	return resp, env, err
}

func (f *fixture) createPost(t *testing.T, sender, title string) uint64 {
	t.Helper()
	resp, _, err := f.execute(sender, fee(CreatePostFee), ExecuteMsg{CreatePost: &CreatePostMsg{
		PostTitle:  title,
		ExternalID: testLink,
		Text:       "body of " + title,
		Tags:       []string{"history"},
	}})
	require.NoError(t, err)
	raw, ok := resp.Attribute("post_id")
	require.True(t, ok)
	id, err := strconv.ParseUint(raw, 10, 64)
	require.NoError(t, err)
	return id
}

func fee(amount uint64) Coins {
	return Coins{NewCoin(amount, DefaultDenom)}
}

func ptr[T any](v T) *T {
	return &v
}
