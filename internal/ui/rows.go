package ui

import (
	"github.com/five82/linkboard/internal/api"
	"github.com/five82/linkboard/internal/viewstate"
)

// row is one selectable line of the board: a post or one of its comments.
type row struct {
	key      viewstate.Key
	postID   int64 // owning post; equals key.ID for post rows
	link     string
	comments int // post rows only
}

func (r row) isPost() bool { return r.key.Kind == api.KindPost }

// buildRows flattens posts and (unless hidden) their comments in server order.
func buildRows(posts []api.Post, hideComments bool) []row {
	rows := make([]row, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, row{
			key:      viewstate.PostKey(p.ID),
			postID:   p.ID,
			link:     p.Link,
			comments: len(p.Comments),
		})
		if hideComments {
			continue
		}
		for _, c := range p.Comments {
			rows = append(rows, row{
				key:    viewstate.CommentKey(c.ID),
				postID: p.ID,
				link:   c.Link,
			})
		}
	}
	return rows
}

// relocate returns the index of key in rows. When key is gone it falls back to
// the owning post, then to prev clamped into range.
func relocate(rows []row, key viewstate.Key, postID int64, prev int) int {
	if len(rows) == 0 {
		return 0
	}
	for i, r := range rows {
		if r.key == key {
			return i
		}
	}
	for i, r := range rows {
		if r.isPost() && r.postID == postID {
			return i
		}
	}
	if prev >= len(rows) {
		return len(rows) - 1
	}
	if prev < 0 {
		return 0
	}
	return prev
}
