package viewstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/five82/linkboard/internal/api"
)

type fakeClient struct {
	mu        sync.Mutex
	lists     []api.PostList // response per fetch; the last one repeats
	fetchErr  error
	firstErr  error // returned only by the first fetch
	mutateErr error
	fetches   int
	calls     []string

	// gate blocks the first fetch after it has been counted.
	started chan struct{}
	gate    chan struct{}
}

func (f *fakeClient) FetchPosts(ctx context.Context) (api.PostList, error) {
	f.mu.Lock()
	f.fetches++
	n := f.fetches
	err := f.fetchErr
	if n == 1 && f.firstErr != nil {
		err = f.firstErr
	}
	var list api.PostList
	if len(f.lists) > 0 {
		idx := n - 1
		if idx >= len(f.lists) {
			idx = len(f.lists) - 1
		}
		list = f.lists[idx]
	}
	gate := f.gate
	f.mu.Unlock()

	if n == 1 && gate != nil {
		close(f.started)
		<-gate
	}
	if err != nil {
		return api.PostList{}, err
	}
	return list, nil
}

func (f *fakeClient) Create(ctx context.Context, kind api.Kind, parent *int64, link string) (api.Entity, error) {
	parentDesc := "none"
	if parent != nil {
		parentDesc = fmt.Sprint(*parent)
	}
	f.record(fmt.Sprintf("create %s parent=%s link=%s", kind, parentDesc, link))
	return api.Entity{Kind: kind, ID: 100, Link: link}, f.mutateErr
}

func (f *fakeClient) Update(ctx context.Context, kind api.Kind, id int64, link string) (api.Entity, error) {
	f.record(fmt.Sprintf("update %s %d link=%s", kind, id, link))
	return api.Entity{Kind: kind, ID: id, Link: link}, f.mutateErr
}

func (f *fakeClient) Delete(ctx context.Context, kind api.Kind, id int64) error {
	f.record(fmt.Sprintf("delete %s %d", kind, id))
	return f.mutateErr
}

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeClient) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func scenario() api.PostList {
	return api.PostList{Posts: []api.Post{
		{ID: 1, Link: "a", Comments: []api.Comment{{ID: 10, Link: "x"}}},
	}}
}

func bigger() api.PostList {
	return api.PostList{Posts: []api.Post{
		{ID: 1, Link: "a", Comments: []api.Comment{{ID: 10, Link: "x"}, {ID: 11, Link: "y"}}},
		{ID: 2, Link: "b"},
		{ID: 3, Link: "c", Comments: []api.Comment{{ID: 12, Link: "z"}}},
	}}
}

func TestReload_Scenario(t *testing.T) {
	client := &fakeClient{lists: []api.PostList{scenario()}}
	c := New(client, nil)

	snap, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Loaded)
	assert.Len(t, snap.Posts, 1)

	assert.False(t, c.IsFormVisible(api.KindPost, 1))
	assert.False(t, c.IsFormVisible(api.KindComment, 10))

	form, ok := c.LookupEditForm(api.KindPost, 1)
	require.True(t, ok)
	assert.Equal(t, "a", form.Link)

	form, ok = c.LookupEditForm(api.KindComment, 10)
	require.True(t, ok)
	assert.Equal(t, "x", form.Link)

	_, ok = c.LookupEditForm(api.KindComment, 99)
	assert.False(t, ok)
}

func TestReload_EveryEntityHiddenWithSeededForm(t *testing.T) {
	list := bigger()
	c := New(&fakeClient{lists: []api.PostList{list}}, nil)

	_, err := c.Reload(context.Background())
	require.NoError(t, err)

	for _, p := range list.Posts {
		assert.False(t, c.IsFormVisible(api.KindPost, p.ID), "post %d", p.ID)
		form, ok := c.LookupEditForm(api.KindPost, p.ID)
		require.True(t, ok, "post %d form", p.ID)
		assert.Equal(t, p.Link, form.Link)
		assert.False(t, form.Dirty())
		for _, cm := range p.Comments {
			assert.False(t, c.IsFormVisible(api.KindComment, cm.ID), "comment %d", cm.ID)
			form, ok := c.LookupEditForm(api.KindComment, cm.ID)
			require.True(t, ok, "comment %d form", cm.ID)
			assert.Equal(t, cm.Link, form.Link)
		}
	}

	posts, comments := c.Snapshot().Stats()
	assert.Equal(t, 3, posts)
	assert.Equal(t, 4, comments)
}

func TestReload_ReplacesStateWholesale(t *testing.T) {
	client := &fakeClient{lists: []api.PostList{bigger(), scenario()}}
	c := New(client, nil)
	ctx := context.Background()

	_, err := c.Reload(ctx)
	require.NoError(t, err)
	c.ToggleForm(api.KindPost, 2)
	c.ToggleForm(api.KindComment, 10)
	require.True(t, c.SetFormLink(api.KindComment, 10, "edited"))

	_, err = c.Reload(ctx)
	require.NoError(t, err)

	// Entities gone from the server lose their forms and flags.
	_, ok := c.LookupEditForm(api.KindPost, 2)
	assert.False(t, ok)
	_, ok = c.LookupEditForm(api.KindComment, 12)
	assert.False(t, ok)
	assert.NotContains(t, c.Snapshot().Visible, PostKey(2))

	// Surviving entities are reset to hidden and re-seeded from the server.
	assert.False(t, c.IsFormVisible(api.KindComment, 10))
	form, ok := c.LookupEditForm(api.KindComment, 10)
	require.True(t, ok)
	assert.Equal(t, "x", form.Link)
}

func TestReload_FailureKeepsState(t *testing.T) {
	client := &fakeClient{lists: []api.PostList{scenario()}}
	c := New(client, nil)
	ctx := context.Background()

	_, err := c.Reload(ctx)
	require.NoError(t, err)
	c.ToggleForm(api.KindPost, 1)
	before := c.Snapshot()

	client.fetchErr = errors.New("connection refused")
	snap, err := c.Reload(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.fetchErr)

	assert.Equal(t, before.Posts, snap.Posts)
	assert.Equal(t, before.Visible, snap.Visible)
	assert.Equal(t, before.Forms, snap.Forms)
	assert.True(t, c.IsFormVisible(api.KindPost, 1))
	assert.Equal(t, 1, snap.ConsecutiveFailures)
	assert.False(t, snap.IsOffline())

	_, _ = c.Reload(ctx)
	assert.True(t, c.Snapshot().IsOffline())

	client.fetchErr = nil
	snap, err = c.Reload(ctx)
	require.NoError(t, err)
	assert.Zero(t, snap.ConsecutiveFailures)
	assert.NoError(t, snap.LastError)
}

func TestReload_InitialFailureLeavesEmptyState(t *testing.T) {
	c := New(&fakeClient{fetchErr: errors.New("down")}, nil)

	snap, err := c.Reload(context.Background())
	require.Error(t, err)
	assert.False(t, snap.Loaded)
	assert.Empty(t, snap.Posts)
	assert.Empty(t, snap.Forms)
}

func TestReload_StaleResultDiscarded(t *testing.T) {
	client := &fakeClient{
		lists:   []api.PostList{bigger(), scenario()},
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	c := New(client, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := c.Reload(ctx)
		done <- err
	}()
	<-client.started

	snap, err := c.Reload(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Posts, 1)

	close(client.gate)
	require.NoError(t, <-done)

	assert.Len(t, c.Snapshot().Posts, 1, "older reload must not overwrite newer state")
}

func TestReload_StaleFailureDiscarded(t *testing.T) {
	client := &fakeClient{
		lists:    []api.PostList{scenario()},
		firstErr: errors.New("timeout"),
		started:  make(chan struct{}),
		gate:     make(chan struct{}),
	}
	c := New(client, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := c.Reload(ctx)
		done <- err
	}()
	<-client.started

	_, err := c.Reload(ctx)
	require.NoError(t, err)

	close(client.gate)
	require.NoError(t, <-done, "a failure superseded by a newer reload is not reported")

	snap := c.Snapshot()
	assert.Len(t, snap.Posts, 1)
	assert.NoError(t, snap.LastError)
	assert.Zero(t, snap.ConsecutiveFailures)
	assert.False(t, snap.IsOffline())
}

func TestToggleForm(t *testing.T) {
	c := New(&fakeClient{lists: []api.PostList{scenario()}}, nil)
	_, err := c.Reload(context.Background())
	require.NoError(t, err)

	assert.True(t, c.ToggleForm(api.KindPost, 1))
	assert.True(t, c.IsFormVisible(api.KindPost, 1))
	assert.False(t, c.IsFormVisible(api.KindComment, 1), "kinds do not share flags")
	assert.False(t, c.ToggleForm(api.KindPost, 1))
	assert.False(t, c.IsFormVisible(api.KindPost, 1))
}

func TestToggleForm_UnknownKeyTwiceReturnsToHidden(t *testing.T) {
	c := New(&fakeClient{}, nil)

	assert.False(t, c.IsFormVisible(api.KindComment, 42))
	assert.True(t, c.ToggleForm(api.KindComment, 42))
	assert.False(t, c.ToggleForm(api.KindComment, 42))
	assert.False(t, c.IsFormVisible(api.KindComment, 42))
}

func TestLookupEditForm_CommentDoesNotMatchPostID(t *testing.T) {
	client := &fakeClient{lists: []api.PostList{{Posts: []api.Post{
		{ID: 5, Link: "post-five", Comments: []api.Comment{{ID: 6, Link: "c"}}},
	}}}}
	c := New(client, nil)
	_, err := c.Reload(context.Background())
	require.NoError(t, err)

	_, ok := c.LookupEditForm(api.KindComment, 5)
	assert.False(t, ok)
	_, ok = c.LookupEditForm(api.KindPost, 6)
	assert.False(t, ok)
}

func TestSetFormLink(t *testing.T) {
	c := New(&fakeClient{lists: []api.PostList{scenario()}}, nil)
	_, err := c.Reload(context.Background())
	require.NoError(t, err)

	require.True(t, c.SetFormLink(api.KindPost, 1, "b"))
	form, _ := c.LookupEditForm(api.KindPost, 1)
	assert.Equal(t, "b", form.Link)
	assert.Equal(t, "a", form.Original)
	assert.True(t, form.Dirty())

	assert.False(t, c.SetFormLink(api.KindPost, 404, "b"))
}

func TestSubmitAdd_BlankLinkIsNoop(t *testing.T) {
	for _, link := range []string{"", "   ", "\t\n"} {
		client := &fakeClient{lists: []api.PostList{scenario()}}
		c := New(client, nil)
		_, err := c.Reload(context.Background())
		require.NoError(t, err)
		before := c.Snapshot()

		parent := int64(1)
		refreshed, err := c.SubmitAdd(context.Background(), &parent, link)
		require.NoError(t, err)
		assert.False(t, refreshed)

		refreshed, err = c.SubmitAdd(context.Background(), nil, link)
		require.NoError(t, err)
		assert.False(t, refreshed)

		assert.Empty(t, client.calls, "link %q", link)
		assert.Equal(t, 1, client.fetchCount())
		assert.Equal(t, before.Posts, c.Snapshot().Posts)
	}
}

func TestSubmit_SuccessRefreshesOnce(t *testing.T) {
	parent := int64(1)
	tests := []struct {
		name   string
		submit func(*Controller) (bool, error)
		call   string
	}{
		{"add post", func(c *Controller) (bool, error) {
			return c.SubmitAdd(context.Background(), nil, "new")
		}, "create post parent=none link=new"},
		{"add comment", func(c *Controller) (bool, error) {
			return c.SubmitAdd(context.Background(), &parent, "hi")
		}, "create comment parent=1 link=hi"},
		{"edit post", func(c *Controller) (bool, error) {
			return c.SubmitEdit(context.Background(), api.KindPost, 1, "b")
		}, "update post 1 link=b"},
		{"edit comment", func(c *Controller) (bool, error) {
			return c.SubmitEdit(context.Background(), api.KindComment, 10, "y")
		}, "update comment 10 link=y"},
		{"delete post", func(c *Controller) (bool, error) {
			return c.SubmitDelete(context.Background(), api.KindPost, 1)
		}, "delete post 1"},
		{"delete comment", func(c *Controller) (bool, error) {
			return c.SubmitDelete(context.Background(), api.KindComment, 10)
		}, "delete comment 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{lists: []api.PostList{scenario(), bigger()}}
			c := New(client, nil)
			_, err := c.Reload(context.Background())
			require.NoError(t, err)

			refreshed, err := tt.submit(c)
			require.NoError(t, err)
			assert.True(t, refreshed)
			assert.Equal(t, []string{tt.call}, client.calls)
			assert.Equal(t, 2, client.fetchCount())
			assert.Len(t, c.Snapshot().Posts, 3, "state comes from the refresh")
		})
	}
}

func TestSubmit_FailureSkipsRefreshAndKeepsState(t *testing.T) {
	client := &fakeClient{lists: []api.PostList{scenario(), bigger()}}
	c := New(client, nil)
	ctx := context.Background()
	_, err := c.Reload(ctx)
	require.NoError(t, err)
	c.ToggleForm(api.KindPost, 1)
	before := c.Snapshot()

	rejected := &api.StatusError{Method: "PUT", Path: "posts/1", Code: 400, Message: "bad link"}
	client.mutateErr = rejected

	_, err = c.SubmitAdd(ctx, nil, "x")
	assert.ErrorIs(t, err, rejected)
	_, err = c.SubmitEdit(ctx, api.KindPost, 1, "x")
	assert.True(t, api.IsRejected(err))
	_, err = c.SubmitDelete(ctx, api.KindComment, 10)
	assert.Error(t, err)

	assert.Equal(t, 1, client.fetchCount(), "no refresh after failed mutation")
	after := c.Snapshot()
	assert.Equal(t, before.Posts, after.Posts)
	assert.Equal(t, before.Visible, after.Visible)
	assert.Equal(t, before.Forms, after.Forms)
}

func TestSubmit_ReloadFailureAfterMutation(t *testing.T) {
	client := &fakeClient{lists: []api.PostList{scenario()}}
	c := New(client, nil)
	ctx := context.Background()
	_, err := c.Reload(ctx)
	require.NoError(t, err)

	client.fetchErr = errors.New("timeout")
	refreshed, err := c.SubmitDelete(ctx, api.KindPost, 1)
	require.Error(t, err)
	assert.False(t, refreshed)
	assert.Contains(t, err.Error(), "reload after delete post")
	assert.Len(t, c.Snapshot().Posts, 1)
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	c := New(&fakeClient{lists: []api.PostList{scenario()}}, nil)
	_, err := c.Reload(context.Background())
	require.NoError(t, err)

	snap := c.Snapshot()
	snap.Posts[0].Comments[0].Link = "mutated"
	snap.Visible[PostKey(1)] = true
	snap.Forms[PostKey(1)] = EditForm{Link: "mutated"}

	again := c.Snapshot()
	assert.Equal(t, "x", again.Posts[0].Comments[0].Link)
	assert.False(t, again.Visible[PostKey(1)])
	assert.Equal(t, "a", again.Forms[PostKey(1)].Link)
}

func TestController_LogsReloadAndMutations(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	client := &fakeClient{lists: []api.PostList{scenario()}}
	c := New(client, zap.New(core))

	_, err := c.SubmitAdd(context.Background(), nil, "new")
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("mutation accepted").Len())
	reloaded := logs.FilterMessage("view state reloaded").All()
	require.Len(t, reloaded, 1)
	assert.EqualValues(t, 1, reloaded[0].ContextMap()["posts"])
}

func TestSnapshot_FindPostAndParentOf(t *testing.T) {
	c := New(&fakeClient{lists: []api.PostList{bigger()}}, nil)
	snap, err := c.Reload(context.Background())
	require.NoError(t, err)

	post, ok := snap.FindPost(1)
	require.True(t, ok)
	assert.Equal(t, "a", post.Link)
	_, ok = snap.FindPost(99)
	assert.False(t, ok)

	parent, ok := snap.ParentOf(11)
	require.True(t, ok)
	assert.EqualValues(t, 1, parent)
	_, ok = snap.ParentOf(1)
	assert.False(t, ok, "post ids are not comment ids")
}
