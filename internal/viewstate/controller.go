package viewstate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/linkboard/internal/api"
)

// Key addresses one post or comment. Post and comment ids live in separate
// namespaces, so the kind is part of the key.
type Key struct {
	Kind api.Kind
	ID   int64
}

// PostKey returns the key for a post id.
func PostKey(id int64) Key { return Key{Kind: api.KindPost, ID: id} }

// CommentKey returns the key for a comment id.
func CommentKey(id int64) Key { return Key{Kind: api.KindComment, ID: id} }

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Kind, k.ID)
}

// EditForm is the editable copy of one entity's link, seeded from the last
// fetch.
type EditForm struct {
	Key      Key
	Link     string
	Original string
}

// Dirty reports whether the link was edited since the last fetch.
func (f EditForm) Dirty() bool {
	return f.Link != f.Original
}

// Controller owns the view state derived from the server's post list: the
// posts themselves, edit-form visibility flags and the edit-form registry.
// Every successful fetch replaces all three wholesale.
type Controller struct {
	client api.ResourceClient
	logger *zap.Logger

	// submitMu keeps a mutation and its follow-up reload together so two
	// submissions never interleave.
	submitMu sync.Mutex

	mu          sync.RWMutex
	posts       []api.Post
	visible     map[Key]bool
	forms       map[Key]EditForm
	lastUpdated time.Time
	lastError   error
	failures    int
	reloads     uint64 // reloads started
	installed   uint64 // sequence of the reload currently installed
}

// New returns a controller with empty state. Call Reload to populate it.
func New(client api.ResourceClient, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		client:  client,
		logger:  logger,
		visible: make(map[Key]bool),
		forms:   make(map[Key]EditForm),
	}
}

// Reload fetches the full post list and rebuilds all view state from it. On
// failure the previous posts, flags and forms are kept and the error is
// recorded on the snapshot.
//
// When reloads overlap, only the most recently started one is installed; an
// older reload finishing late, successfully or not, returns the newer state
// instead of clobbering it or recording its error.
func (c *Controller) Reload(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	c.reloads++
	seq := c.reloads
	c.mu.Unlock()

	list, err := c.client.FetchPosts(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	// A newer reload already landed; its outcome wins whether this one
	// succeeded or failed.
	if seq < c.installed {
		c.logger.Debug("discarding stale reload",
			zap.Uint64("seq", seq),
			zap.Uint64("installed", c.installed),
			zap.Bool("failed", err != nil))
		return c.snapshotLocked(), nil
	}
	if err != nil {
		c.lastError = err
		c.lastUpdated = time.Now()
		c.failures++
		c.logger.Warn("reload failed", zap.Error(err), zap.Int("consecutive_failures", c.failures))
		return c.snapshotLocked(), fmt.Errorf("fetch posts: %w", err)
	}

	visible := make(map[Key]bool, len(list.Posts)+list.CommentCount())
	forms := make(map[Key]EditForm, len(list.Posts)+list.CommentCount())
	for _, post := range list.Posts {
		pk := PostKey(post.ID)
		visible[pk] = false
		forms[pk] = EditForm{Key: pk, Link: post.Link, Original: post.Link}
		for _, comment := range post.Comments {
			ck := CommentKey(comment.ID)
			visible[ck] = false
			forms[ck] = EditForm{Key: ck, Link: comment.Link, Original: comment.Link}
		}
	}

	c.posts = clonePosts(list.Posts)
	c.visible = visible
	c.forms = forms
	c.installed = seq
	c.lastError = nil
	c.lastUpdated = time.Now()
	c.failures = 0

	c.logger.Info("view state reloaded",
		zap.Int("posts", len(list.Posts)),
		zap.Int("comments", list.CommentCount()))
	return c.snapshotLocked(), nil
}

// IsFormVisible reports whether the edit form for (kind, id) is shown. Unknown
// keys read as hidden.
func (c *Controller) IsFormVisible(kind api.Kind, id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visible[Key{Kind: kind, ID: id}]
}

// ToggleForm flips the visibility of the edit form for (kind, id) and returns
// the new value. An unknown key counts as hidden, so its first toggle shows it.
func (c *Controller) ToggleForm(kind api.Kind, id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := Key{Kind: kind, ID: id}
	next := !c.visible[k]
	c.visible[k] = next
	return next
}

// LookupEditForm returns the edit form registered for (kind, id).
func (c *Controller) LookupEditForm(kind api.Kind, id int64) (EditForm, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.forms[Key{Kind: kind, ID: id}]
	return f, ok
}

// SetFormLink stores typed input in the edit form for (kind, id). It returns
// false when no form is registered for that key.
func (c *Controller) SetFormLink(kind api.Kind, id int64, link string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := Key{Kind: kind, ID: id}
	f, ok := c.forms[k]
	if !ok {
		return false
	}
	f.Link = link
	c.forms[k] = f
	return true
}

// SubmitAdd creates a post (parent nil) or a comment on *parent. A blank link
// is ignored without contacting the server. It reports whether the state was
// refreshed.
func (c *Controller) SubmitAdd(ctx context.Context, parent *int64, link string) (bool, error) {
	if strings.TrimSpace(link) == "" {
		return false, nil
	}
	kind := api.KindPost
	if parent != nil {
		kind = api.KindComment
	}
	return c.mutate(ctx, "create "+kind.String(), func(ctx context.Context) error {
		_, err := c.client.Create(ctx, kind, parent, link)
		return err
	})
}

// SubmitEdit replaces the link of an existing post or comment.
func (c *Controller) SubmitEdit(ctx context.Context, kind api.Kind, id int64, link string) (bool, error) {
	return c.mutate(ctx, "update "+kind.String(), func(ctx context.Context) error {
		_, err := c.client.Update(ctx, kind, id, link)
		return err
	})
}

// SubmitDelete removes a post or comment.
func (c *Controller) SubmitDelete(ctx context.Context, kind api.Kind, id int64) (bool, error) {
	return c.mutate(ctx, "delete "+kind.String(), func(ctx context.Context) error {
		return c.client.Delete(ctx, kind, id)
	})
}

// mutate runs call and, only if it succeeds, performs exactly one reload.
func (c *Controller) mutate(ctx context.Context, op string, call func(context.Context) error) (bool, error) {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	if err := call(ctx); err != nil {
		c.logger.Warn("mutation failed", zap.String("op", op), zap.Error(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}
	c.logger.Info("mutation accepted", zap.String("op", op))

	if _, err := c.Reload(ctx); err != nil {
		return false, fmt.Errorf("reload after %s: %w", op, err)
	}
	return true, nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Posts:               clonePosts(c.posts),
		Visible:             make(map[Key]bool, len(c.visible)),
		Forms:               make(map[Key]EditForm, len(c.forms)),
		Loaded:              c.installed > 0,
		LastUpdated:         c.lastUpdated,
		LastError:           c.lastError,
		ConsecutiveFailures: c.failures,
	}
	for k, v := range c.visible {
		snap.Visible[k] = v
	}
	for k, v := range c.forms {
		snap.Forms[k] = v
	}
	return snap
}

func clonePosts(posts []api.Post) []api.Post {
	if len(posts) == 0 {
		return nil
	}
	dup := make([]api.Post, len(posts))
	for i, p := range posts {
		dup[i] = p
		if len(p.Comments) > 0 {
			dup[i].Comments = append([]api.Comment(nil), p.Comments...)
		}
	}
	return dup
}
