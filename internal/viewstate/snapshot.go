package viewstate

import (
	"time"

	"github.com/five82/linkboard/internal/api"
)

// Snapshot is an independent copy of the controller state at one point in
// time.
type Snapshot struct {
	Posts   []api.Post
	Visible map[Key]bool
	Forms   map[Key]EditForm
	Loaded  bool // at least one reload has been installed

	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // reload failures since the last success
}

// IsOffline returns true when the API has been unreachable for multiple reloads.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Stats counts posts and comments.
func (s Snapshot) Stats() (posts, comments int) {
	for _, p := range s.Posts {
		comments += len(p.Comments)
	}
	return len(s.Posts), comments
}

// FindPost returns the post with the given id.
func (s Snapshot) FindPost(id int64) (api.Post, bool) {
	for _, p := range s.Posts {
		if p.ID == id {
			return p, true
		}
	}
	return api.Post{}, false
}

// ParentOf returns the id of the post owning a comment.
func (s Snapshot) ParentOf(commentID int64) (int64, bool) {
	for _, p := range s.Posts {
		for _, c := range p.Comments {
			if c.ID == commentID {
				return p.ID, true
			}
		}
	}
	return 0, false
}
