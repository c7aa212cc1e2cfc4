package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alxandria/ledger/internal/contract"
	"github.com/alxandria/ledger/internal/host"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Request rejected by the ledger
	ExitCommandError = 2 // Command error (bad flags, database unreachable, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// NewOutputFormatter creates a formatter for the given format
func NewOutputFormatter(format string, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: format, Writer: w}
}

func (f *OutputFormatter) writeJSON(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Result prints a committed request
func (f *OutputFormatter) Result(res *host.Result) error {
	if f.Format == "json" {
		return f.writeJSON(res)
	}
	fmt.Fprintf(f.Writer, "tx %s at height %d (%s)\n", res.TxID, res.Height, res.BlockTime.Format(time.RFC3339))
	for _, a := range res.Response.Attributes {
		fmt.Fprintf(f.Writer, "  %s = %s\n", a.Key, a.Value)
	}
	for _, m := range res.Response.Messages {
		fmt.Fprintf(f.Writer, "  send %s to %s\n", formatCoins(m.Amount), m.ToAddress)
	}
	return nil
}

// Post prints a single post, or a notice when it does not exist
func (f *OutputFormatter) Post(id uint64, post *contract.Post) error {
	if f.Format == "json" {
		return f.writeJSON(contract.PostResponse{Post: post})
	}
	if post == nil {
		fmt.Fprintf(f.Writer, "post %d not found\n", id)
		return nil
	}
	fmt.Fprintf(f.Writer, "#%d %s\n", post.PostID, post.PostTitle)
	fmt.Fprintf(f.Writer, "  author:  %s\n", post.Author)
	fmt.Fprintf(f.Writer, "  created: %s\n", post.CreationDate.Format(time.RFC3339))
	if post.Editor != nil && post.LastEditDate != nil {
		fmt.Fprintf(f.Writer, "  edited:  %s by %s\n", post.LastEditDate.Format(time.RFC3339), *post.Editor)
	}
	if post.Deleter != nil && post.DeletionDate != nil {
		fmt.Fprintf(f.Writer, "  deleted: %s by %s\n", post.DeletionDate.Format(time.RFC3339), *post.Deleter)
	}
	if post.ExternalID != "" {
		fmt.Fprintf(f.Writer, "  link:    %s\n", post.ExternalID)
	}
	if len(post.Tags) > 0 {
		fmt.Fprintf(f.Writer, "  tags:    %s\n", strings.Join(post.Tags, ", "))
	}
	fmt.Fprintf(f.Writer, "  %s\n", post.Text)
	return nil
}

// Posts prints a page of posts
func (f *OutputFormatter) Posts(posts []contract.Post) error {
	if f.Format == "json" {
		return f.writeJSON(contract.AllPostsResponse{Posts: posts})
	}
	if len(posts) == 0 {
		fmt.Fprintln(f.Writer, "no posts")
		return nil
	}
	for _, p := range posts {
		marker := ""
		if p.IsDeleted() {
			marker = " [deleted]"
		}
		fmt.Fprintf(f.Writer, "#%d\t%s\t%s%s\n", p.PostID, p.Author, p.PostTitle, marker)
	}
	return nil
}

// Balance prints the balances of an address
func (f *OutputFormatter) Balance(addr string, coins contract.Coins) error {
	if f.Format == "json" {
		return f.writeJSON(map[string]interface{}{"address": addr, "balances": coins})
	}
	fmt.Fprintf(f.Writer, "%s: %s\n", addr, formatCoins(coins))
	return nil
}

// Head prints the ledger head
func (f *OutputFormatter) Head(head *host.HeadState) error {
	if f.Format == "json" {
		return f.writeJSON(head)
	}
	fmt.Fprintf(f.Writer, "chain:    %s\n", head.ChainID)
	fmt.Fprintf(f.Writer, "height:   %d\n", head.Height)
	if !head.BlockTime.IsZero() {
		fmt.Fprintf(f.Writer, "time:     %s\n", head.BlockTime.Format(time.RFC3339))
	}
	fmt.Fprintf(f.Writer, "contract: %s %s at %s\n", head.Contract, head.ContractVersion, head.ContractAddress)
	fmt.Fprintf(f.Writer, "admin:    %s\n", head.Admin)
	fmt.Fprintf(f.Writer, "posts:    %d (%d deleted, last id %d)\n", head.PostCount, head.DeletedPosts, head.LastPostID)
	return nil
}

func formatCoins(coins contract.Coins) string {
	if len(coins) == 0 {
		return "empty"
	}
	parts := make([]string, 0, len(coins))
	for _, c := range coins {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ", ")
}

// Tx prints a committed transaction
func (f *OutputFormatter) Tx(rec *host.TxRecord) error {
	if f.Format == "json" {
		return f.writeJSON(rec)
	}
	fmt.Fprintf(f.Writer, "tx %s at height %d (%s)\n", rec.TxID, rec.Height, rec.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(f.Writer, "  sender: %s\n", rec.Sender)
	fmt.Fprintf(f.Writer, "  action: %s\n", rec.Action)
	for _, a := range rec.Attributes {
		fmt.Fprintf(f.Writer, "  %s = %s\n", a.Key, a.Value)
	}
	for _, t := range rec.Transfers {
		from := t.From
		if from == "" {
			from = "deposit"
		}
		fmt.Fprintf(f.Writer, "  %s: %s -> %s\n", t.Amount, from, t.To)
	}
	return nil
}
