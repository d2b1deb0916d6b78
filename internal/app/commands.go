package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap/zapcore"

	"github.com/five82/linkboard/internal/api"
	"github.com/five82/linkboard/internal/config"
	"github.com/five82/linkboard/internal/logtail"
)

// ListOptions selects what List prints.
type ListOptions struct {
	JSON bool
	Kind string // "", "post(s)" or "comment(s)"; empty prints the full tree
}

type listedComment struct {
	ID     int64  `json:"id"`
	PostID int64  `json:"post_id"`
	Link   string `json:"link"`
}

// List fetches the posts once and prints them as a tree, or as the raw JSON
// payload when JSON is set. A Kind narrows the output to posts or comments.
func List(ctx context.Context, opts Options, w io.Writer, lo ListOptions) error {
	filter := false
	var kind api.Kind
	if lo.Kind != "" {
		k, err := api.ParseKind(lo.Kind)
		if err != nil {
			return err
		}
		filter, kind = true, k
	}

	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.close()

	snap, err := s.controller.Reload(ctx)
	if err != nil {
		return err
	}

	switch {
	case filter && kind == api.KindComment:
		return printComments(w, snap.Posts, lo.JSON)
	case filter:
		posts := make([]api.Post, len(snap.Posts))
		for i, p := range snap.Posts {
			posts[i] = api.Post{ID: p.ID, Link: p.Link, Comments: []api.Comment{}}
		}
		return printTree(w, posts, lo.JSON)
	}
	return printTree(w, snap.Posts, lo.JSON)
}

func printTree(w io.Writer, posts []api.Post, asJSON bool) error {
	if asJSON {
		return writeJSON(w, struct {
			Posts []api.Post `json:"posts"`
		}{Posts: nonNil(posts)})
	}

	if len(posts) == 0 {
		_, err := fmt.Fprintln(w, "no posts")
		return err
	}
	comments := 0
	for _, p := range posts {
		if _, err := fmt.Fprintf(w, "post %d  %s\n", p.ID, p.Link); err != nil {
			return err
		}
		for _, c := range p.Comments {
			comments++
			if _, err := fmt.Fprintf(w, "  comment %d  %s\n", c.ID, c.Link); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%d posts, %d comments\n", len(posts), comments)
	return err
}

func printComments(w io.Writer, posts []api.Post, asJSON bool) error {
	var out []listedComment
	for _, p := range posts {
		for _, c := range p.Comments {
			out = append(out, listedComment{ID: c.ID, PostID: p.ID, Link: c.Link})
		}
	}
	if asJSON {
		return writeJSON(w, struct {
			Comments []listedComment `json:"comments"`
		}{Comments: nonNil(out)})
	}

	if len(out) == 0 {
		_, err := fmt.Fprintln(w, "no comments")
		return err
	}
	for _, c := range out {
		if _, err := fmt.Fprintf(w, "comment %d  post %d  %s\n", c.ID, c.PostID, c.Link); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d comments\n", len(out))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Logs prints the last n entries of the client log at or above level.
func Logs(opts Options, w io.Writer, n int, level string) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	minLevel := zapcore.DebugLevel
	if level != "" {
		if minLevel, err = zapcore.ParseLevel(level); err != nil {
			return fmt.Errorf("parse level: %w", err)
		}
	}

	entries, err := logtail.Read(cfg.LogFile, n, minLevel)
	if err != nil {
		return err
	}
	for _, e := range entries {
		line := e.Raw
		if e.Parsed {
			line = fmt.Sprintf("%s %-5s %s", e.Time, e.Level.CapitalString(), e.Message)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
