package devserver

import (
	"errors"
	"strings"
	"sync"

	"github.com/five82/linkboard/internal/api"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrBlankLink       = errors.New("link is required")
)

// Store keeps posts and their comments in memory, in insertion order.
type Store struct {
	mu          sync.RWMutex
	posts       []*api.Post
	nextPost    int64
	nextComment int64
}

// NewStore returns an empty store. Ids start at 1.
func NewStore() *Store {
	return &Store{nextPost: 1, nextComment: 1}
}

// List returns a deep copy of every post.
func (s *Store) List() api.PostList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := api.PostList{Posts: make([]api.Post, 0, len(s.posts))}
	for _, p := range s.posts {
		cp := *p
		cp.Comments = append(make([]api.Comment, 0, len(p.Comments)), p.Comments...)
		out.Posts = append(out.Posts, cp)
	}
	return out
}

// AddPost creates a post with no comments.
func (s *Store) AddPost(link string) (api.Post, error) {
	link, err := cleanLink(link)
	if err != nil {
		return api.Post{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &api.Post{ID: s.nextPost, Link: link, Comments: []api.Comment{}}
	s.nextPost++
	s.posts = append(s.posts, p)
	return *p, nil
}

// UpdatePost replaces a post's link.
func (s *Store) UpdatePost(id int64, link string) (api.Post, error) {
	link, err := cleanLink(link)
	if err != nil {
		return api.Post{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.postIndex(id)
	if idx < 0 {
		return api.Post{}, ErrPostNotFound
	}
	s.posts[idx].Link = link
	cp := *s.posts[idx]
	cp.Comments = append([]api.Comment{}, s.posts[idx].Comments...)
	return cp, nil
}

// DeletePost removes a post together with its comments.
func (s *Store) DeletePost(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.postIndex(id)
	if idx < 0 {
		return ErrPostNotFound
	}
	s.posts = append(s.posts[:idx], s.posts[idx+1:]...)
	return nil
}

// AddComment appends a comment to a post.
func (s *Store) AddComment(postID int64, link string) (api.Comment, error) {
	link, err := cleanLink(link)
	if err != nil {
		return api.Comment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.postIndex(postID)
	if idx < 0 {
		return api.Comment{}, ErrPostNotFound
	}
	c := api.Comment{ID: s.nextComment, Link: link}
	s.nextComment++
	s.posts[idx].Comments = append(s.posts[idx].Comments, c)
	return c, nil
}

// UpdateComment replaces a comment's link.
func (s *Store) UpdateComment(id int64, link string) (api.Comment, error) {
	link, err := cleanLink(link)
	if err != nil {
		return api.Comment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pi, ci := s.commentIndex(id)
	if pi < 0 {
		return api.Comment{}, ErrCommentNotFound
	}
	s.posts[pi].Comments[ci].Link = link
	return s.posts[pi].Comments[ci], nil
}

// DeleteComment removes a single comment.
func (s *Store) DeleteComment(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pi, ci := s.commentIndex(id)
	if pi < 0 {
		return ErrCommentNotFound
	}
	comments := s.posts[pi].Comments
	s.posts[pi].Comments = append(comments[:ci], comments[ci+1:]...)
	return nil
}

func (s *Store) postIndex(id int64) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) commentIndex(id int64) (int, int) {
	for pi, p := range s.posts {
		for ci, c := range p.Comments {
			if c.ID == id {
				return pi, ci
			}
		}
	}
	return -1, -1
}

func cleanLink(link string) (string, error) {
	trimmed := strings.TrimSpace(link)
	if trimmed == "" {
		return "", ErrBlankLink
	}
	return trimmed, nil
}

// Seed fills the store with a few posts for local development.
func (s *Store) Seed() {
	samples := []struct {
		link     string
		comments []string
	}{
		{"https://picsum.photos/id/10/600/400", []string{"Nice forest", "Where was this taken?"}},
		{"https://picsum.photos/id/29/600/400", []string{"Mountains!"}},
		{"https://picsum.photos/id/42/600/400", nil},
	}
	for _, sample := range samples {
		p, err := s.AddPost(sample.link)
		if err != nil {
			continue
		}
		for _, c := range sample.comments {
			_, _ = s.AddComment(p.ID, c)
		}
	}
}
