package api

import (
	"fmt"
	"strings"
)

// Kind identifies a remote resource type.
type Kind int

const (
	KindPost Kind = iota
	KindComment
)

// String returns the lowercase resource name used in logs and messages.
func (k Kind) String() string {
	switch k {
	case KindPost:
		return "post"
	case KindComment:
		return "comment"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts "post"/"posts" and "comment"/"comments".
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "post", "posts":
		return KindPost, nil
	case "comment", "comments":
		return KindComment, nil
	}
	return 0, fmt.Errorf("unknown resource kind %q", value)
}

// Comment mirrors a comment nested inside a post payload.
type Comment struct {
	ID   int64  `json:"id"`
	Link string `json:"link"`
}

// Post mirrors a post payload with its comments in server order.
type Post struct {
	ID       int64     `json:"id"`
	Link     string    `json:"link"`
	Comments []Comment `json:"comments"`
}

// PostList mirrors the GET posts response.
type PostList struct {
	Posts []Post `json:"posts"`
}

// CommentCount returns the total number of comments across all posts.
func (l PostList) CommentCount() int {
	n := 0
	for _, p := range l.Posts {
		n += len(p.Comments)
	}
	return n
}

// Entity is the result of a create or update call. Comments are returned
// without their nested list, so Comments is always empty for KindComment.
type Entity struct {
	Kind     Kind      `json:"-"`
	ID       int64     `json:"id"`
	Link     string    `json:"link"`
	Comments []Comment `json:"comments,omitempty"`
}

// LinkPayload is the request body for create and update calls.
type LinkPayload struct {
	Link string `json:"link"`
}
