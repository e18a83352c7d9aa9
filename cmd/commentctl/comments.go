package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/blog-comments-api/internal/client"
	"github.com/blog-comments-api/internal/models"
	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list [slug]",
		Short: "List the comments of a post, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comments, err := opts.consumer().Refresh(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list comments: %s", client.UserMessage(err))
			}

			out := cmd.OutOrStdout()
			if len(comments) == 0 {
				fmt.Fprintln(out, "No comments yet.")
				return nil
			}
			for _, c := range comments {
				printComment(out, c)
			}
			return nil
		},
	}
}

func newPostCmd(opts *options) *cobra.Command {
	form := &client.Form{}

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a comment on a blog post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			comment, err := opts.consumer().Submit(cmd.Context(), form)
			if err != nil {
				return fmt.Errorf("failed to post comment: %s", form.Error)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Comment posted.")
			printComment(out, *comment)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.PostSlug, "slug", "", "post slug")
	cmd.Flags().StringVar(&form.AuthorName, "name", "", "author name")
	cmd.Flags().StringVar(&form.Content, "content", "", "comment text")
	return cmd
}

// printComment writes the comment as plain text. Control and format
// characters are escaped so the terminal never acts on them.
func printComment(w io.Writer, c models.Comment) {
	fmt.Fprintf(w, "#%d %s (%s)\n", c.ID, terminalSafe(c.AuthorName), c.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	for _, line := range strings.Split(c.Content, "\n") {
		fmt.Fprintf(w, "    %s\n", terminalSafe(line))
	}
}

// terminalSafe replaces control characters and invisible
// format characters such as bidi overrides with their Go escape. Tabs pass.
func terminalSafe(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r != '\t' && (unicode.IsControl(r) || unicode.Is(unicode.Cf, r)) {
			q := strconv.QuoteRune(r)
			b.WriteString(q[1 : len(q)-1])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
