package contract

import (
	"context"
	"fmt"
	"strconv"
)

// Execute dispatches a state-changing request.
func (c *Contract) Execute(ctx context.Context, deps Deps, env Env, info MessageInfo, msg ExecuteMsg) (*Response, error) {
	if msg.Action() == "" {
		return nil, invalidMessage("exactly one of create_post, edit_post, delete_post, withdraw is required")
	}
	cfg, err := c.loadConfig(ctx, deps.Storage)
	if err != nil {
		return nil, err
	}

	switch {
	case msg.CreatePost != nil:
		return c.createPost(ctx, deps, env, info, *msg.CreatePost)
	case msg.EditPost != nil:
		return c.editPost(ctx, deps, env, info, *msg.EditPost)
	case msg.DeletePost != nil:
		return c.deletePost(ctx, deps, env, info, *msg.DeletePost)
	default:
		return c.withdraw(ctx, deps, env, info, cfg)
	}
}

func (c *Contract) createPost(ctx context.Context, deps Deps, env Env, info MessageInfo, msg CreatePostMsg) (*Response, error) {
	if err := AssertSentExactCoin(info.Funds, c.fee(CreatePostFee)); err != nil {
		return nil, err
	}
	if err := ValidateContent(msg.Text, msg.ExternalID, c.params.GatewayPrefix); err != nil {
		return nil, err
	}

	id, err := nextPostID(ctx, deps.Storage)
	if err != nil {
		return nil, err
	}

	post := &Post{
		PostID:       id,
		PostTitle:    msg.PostTitle,
		ExternalID:   msg.ExternalID,
		Text:         msg.Text,
		Tags:         copyTags(msg.Tags),
		Author:       info.Sender,
		CreationDate: env.Block.Time,
	}
	if err := deps.Storage.SavePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to save post %d: %w", id, err)
	}

	return NewResponse().
		AddAttribute("action", ActionCreatePost).
		AddAttribute("post_id", strconv.FormatUint(id, 10)).
		AddAttribute("author", post.Author), nil
}

func (c *Contract) editPost(ctx context.Context, deps Deps, env Env, info MessageInfo, msg EditPostMsg) (*Response, error) {
	if err := AssertSentExactCoin(info.Funds, c.fee(EditPostFee)); err != nil {
		return nil, err
	}
	if err := ValidateContent(msg.Text, msg.ExternalID, c.params.GatewayPrefix); err != nil {
		return nil, err
	}

	post, err := c.loadPost(ctx, deps.Storage, msg.PostID)
	if err != nil {
		return nil, err
	}

	editor := info.Sender
	editedAt := env.Block.Time
	// Deleter and deletion date are not carried over: an edit revives a
	// redacted post unless posts are sealed.
	edited := &Post{
		PostID:       post.PostID,
		PostTitle:    post.PostTitle,
		ExternalID:   msg.ExternalID,
		Text:         msg.Text,
		Tags:         copyTags(msg.Tags),
		Author:       post.Author,
		CreationDate: post.CreationDate,
		LastEditDate: &editedAt,
		Editor:       &editor,
	}
	if err := deps.Storage.SavePost(ctx, edited); err != nil {
		return nil, fmt.Errorf("failed to save post %d: %w", edited.PostID, err)
	}

	return NewResponse().
		AddMessage(BankMsg{
			ToAddress: edited.Author,
			Amount:    Coins{NewCoin(EditReward, c.params.Denom)},
		}).
		AddAttribute("action", ActionEditPost).
		AddAttribute("post_id", strconv.FormatUint(edited.PostID, 10)).
		AddAttribute("editor", editor), nil
}

func (c *Contract) deletePost(ctx context.Context, deps Deps, env Env, info MessageInfo, msg DeletePostMsg) (*Response, error) {
	if err := AssertSentExactCoin(info.Funds, c.fee(DeletePostFee)); err != nil {
		return nil, err
	}

	post, err := c.loadPost(ctx, deps.Storage, msg.PostID)
	if err != nil {
		return nil, err
	}

	deleter := info.Sender
	deletedAt := env.Block.Time
	deleted := &Post{
		PostID:       post.PostID,
		PostTitle:    post.PostTitle,
		ExternalID:   "",
		Text:         DeletedText,
		Tags:         []string{DeletedTag},
		Author:       post.Author,
		CreationDate: post.CreationDate,
		LastEditDate: post.LastEditDate,
		Editor:       post.Editor,
		Deleter:      &deleter,
		DeletionDate: &deletedAt,
	}
	if err := deps.Storage.SavePost(ctx, deleted); err != nil {
		return nil, fmt.Errorf("failed to save post %d: %w", deleted.PostID, err)
	}

	return NewResponse().
		AddAttribute("action", ActionDeletePost).
		AddAttribute("post_id", strconv.FormatUint(deleted.PostID, 10)).
		AddAttribute("deleter", deleter), nil
}

func (c *Contract) withdraw(ctx context.Context, deps Deps, env Env, info MessageInfo, cfg *Config) (*Response, error) {
	if info.Sender != cfg.Admin {
		return nil, ErrUnauthorized
	}
	if err := AssertSentExactCoin(info.Funds, nil); err != nil {
		return nil, err
	}

	payout, err := deps.API.AddrValidate(c.params.PayoutAddress)
	if err != nil {
		return nil, err
	}

	balance, err := deps.Querier.AllBalances(ctx, env.Contract.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to query contract balance: %w", err)
	}

	if balance, err = balance.Normalize(); err != nil {
		return nil, fmt.Errorf("invalid contract balance: %w", err)
	}

	resp := NewResponse()
	if len(balance) > 0 {
		resp.AddMessage(BankMsg{ToAddress: payout, Amount: balance})
	}
	return resp.AddAttribute("action", ActionWithdraw), nil
}

// loadPost fetches a post that a mutation is about to replace.
func (c *Contract) loadPost(ctx context.Context, store Storage, id uint64) (*Post, error) {
	post, err := store.LoadPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load post %d: %w", id, err)
	}
	if post == nil {
		return nil, postNotFound(id)
	}
	if c.params.SealDeletedPosts && post.IsDeleted() {
		return nil, postDeleted(id)
	}
	return post, nil
}

func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
