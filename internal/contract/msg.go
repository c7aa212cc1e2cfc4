package contract

// InstantiateMsg configures the ledger. Admin defaults to the sender.
type InstantiateMsg struct {
	Admin *string `json:"admin,omitempty"`
}

// ExecuteMsg carries exactly one state-changing request.
type ExecuteMsg struct {
	CreatePost *CreatePostMsg `json:"create_post,omitempty"`
	EditPost   *EditPostMsg   `json:"edit_post,omitempty"`
	DeletePost *DeletePostMsg `json:"delete_post,omitempty"`
	Withdraw   *WithdrawMsg   `json:"withdraw,omitempty"`
}

type CreatePostMsg struct {
	PostTitle  string   `json:"post_title"`
	ExternalID string   `json:"external_id"`
	Text       string   `json:"text"`
	Tags       []string `json:"tags"`
}

type EditPostMsg struct {
	PostID     uint64   `json:"post_id"`
	ExternalID string   `json:"external_id"`
	Text       string   `json:"text"`
	Tags       []string `json:"tags"`
}

type DeletePostMsg struct {
	PostID uint64 `json:"post_id"`
}

type WithdrawMsg struct{}

// Action returns the attribute name of the request variant, or "" when the
// message does not carry exactly one variant.
func (m ExecuteMsg) Action() string {
	action, n := "", 0
	if m.CreatePost != nil {
		action, n = ActionCreatePost, n+1
	}
	if m.EditPost != nil {
		action, n = ActionEditPost, n+1
	}
	if m.DeletePost != nil {
		action, n = ActionDeletePost, n+1
	}
	if m.Withdraw != nil {
		action, n = ActionWithdraw, n+1
	}
	if n != 1 {
		return ""
	}
	return action
}

// QueryMsg carries exactly one read request.
type QueryMsg struct {
	AllPosts *AllPostsQuery `json:"all_posts,omitempty"`
	Post     *PostQuery     `json:"post,omitempty"`
}

type AllPostsQuery struct {
	Limit      *uint32 `json:"limit,omitempty"`
	StartAfter *uint64 `json:"start_after,omitempty"`
}

type PostQuery struct {
	PostID uint64 `json:"post_id"`
}

type MigrateMsg struct{}

type AllPostsResponse struct {
	Posts []Post `json:"posts"`
}

type PostResponse struct {
	Post *Post `json:"post"`
}
