package contract

import (
	"context"
	"encoding/json"
	"fmt"
)

// Pagination bounds for AllPosts.
const (
	DefaultLimit = 10
	MaxLimit     = 30
)

// Query dispatches a read request and returns its JSON encoding.
func (c *Contract) Query(ctx context.Context, deps Deps, msg QueryMsg) (json.RawMessage, error) {
	var (
		result interface{}
		err    error
	)
	switch {
	case msg.AllPosts != nil && msg.Post == nil:
		result, err = c.QueryAllPosts(ctx, deps, msg.AllPosts.Limit, msg.AllPosts.StartAfter)
	case msg.Post != nil && msg.AllPosts == nil:
		result, err = c.QueryPost(ctx, deps, msg.Post.PostID)
	default:
		return nil, invalidMessage("exactly one of all_posts, post is required")
	}
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query result: %w", err)
	}
	return data, nil
}

// QueryAllPosts lists posts in ascending id order starting after startAfter.
// The limit defaults to DefaultLimit and is capped at MaxLimit.
func (c *Contract) QueryAllPosts(ctx context.Context, deps Deps, limit *uint32, startAfter *uint64) (*AllPostsResponse, error) {
	n := DefaultLimit
	if limit != nil {
		n = int(*limit)
	}
	if n > MaxLimit {
		n = MaxLimit
	}

	posts, err := deps.Storage.RangePosts(ctx, startAfter, n)
	if err != nil {
		return nil, fmt.Errorf("failed to range posts: %w", err)
	}
	if posts == nil {
		posts = []Post{}
	}
	return &AllPostsResponse{Posts: posts}, nil
}

// QueryPost looks up a single post. A missing post yields a nil Post.
func (c *Contract) QueryPost(ctx context.Context, deps Deps, postID uint64) (*PostResponse, error) {
	post, err := deps.Storage.LoadPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post %d: %w", postID, err)
	}
	return &PostResponse{Post: post}, nil
}
