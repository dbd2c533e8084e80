package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DanielleFiene/redditmini/internal/model"
	"github.com/DanielleFiene/redditmini/internal/reddit"
)

// mockAPI implements API for testing.
type mockAPI struct {
	mu sync.Mutex

	posts     map[string][]reddit.Post // by category
	topErr    map[string]error
	thread    *reddit.Thread
	threadErr error
	users     map[string]reddit.User
	aboutErr  map[string]error
	subs      []reddit.Subreddit
	subsErr   error
	entries   map[string][]reddit.FeedEntry
	feedErr   map[string]error

	topCalls   []string
	aboutCalls []string
	aboutCount atomic.Int32
}

func (m *mockAPI) Top(ctx context.Context, category string, limit int) ([]reddit.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topCalls = append(m.topCalls, fmt.Sprintf("%s:%d", category, limit))
	if err := m.topErr[category]; err != nil {
		return nil, err
	}
	return m.posts[category], nil
}

func (m *mockAPI) Comments(ctx context.Context, category, itemID string) (*reddit.Thread, error) {
	if m.threadErr != nil {
		return nil, m.threadErr
	}
	return m.thread, nil
}

func (m *mockAPI) About(ctx context.Context, author string) (reddit.User, error) {
	m.aboutCount.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aboutCalls = append(m.aboutCalls, author)
	if err := m.aboutErr[author]; err != nil {
		return reddit.User{}, err
	}
	return m.users[author], nil
}

func (m *mockAPI) Popular(ctx context.Context, limit int) ([]reddit.Subreddit, error) {
	return m.subs, m.subsErr
}

func (m *mockAPI) Feed(ctx context.Context, rawURL string) ([]reddit.FeedEntry, error) {
	if err := m.feedErr[rawURL]; err != nil {
		return nil, err
	}
	return m.entries[rawURL], nil
}

func post(id, author string) reddit.Post {
	return reddit.Post{ID: id, Author: author, Title: "title " + id, CreatedUTC: 1700000000}
}

func user(avatar string) reddit.User {
	return reddit.User{SnoovatarImg: avatar}
}

func postListing(posts ...reddit.Post) reddit.Listing[reddit.Post] {
	var l reddit.Listing[reddit.Post]
	for _, p := range posts {
		l.Data.Children = append(l.Data.Children, reddit.Thing[reddit.Post]{Kind: "t3", Data: p})
	}
	return l
}

func commentListing(kinds []string, comments ...reddit.Comment) reddit.Listing[reddit.Comment] {
	var l reddit.Listing[reddit.Comment]
	for i, c := range comments {
		l.Data.Children = append(l.Data.Children, reddit.Thing[reddit.Comment]{Kind: kinds[i], Data: c})
	}
	return l
}

func TestFeedKeepsOrderAndDegradesFailedAvatars(t *testing.T) {
	api := &mockAPI{
		posts: map[string][]reddit.Post{
			"golang": {post("1", "ann"), post("2", "bob"), post("3", "cat"), post("4", "dan"), post("5", "eve")},
		},
		users: map[string]reddit.User{
			"ann": user("https://i.redd.it/ann.png"),
			"cat": user("https://i.redd.it/cat.png"),
			"eve": user("https://i.redd.it/eve.png"),
		},
		aboutErr: map[string]error{
			"bob": errors.New("HTTP error: 404 Not Found"),
			"dan": errors.New("timeout"),
		},
	}
	l := New(api, Options{})

	st := l.Feed(context.Background(), "golang")
	items, ok := st.Data()
	require.True(t, ok, "expected Ready, got %v %q", st.Status(), st.Reason())
	require.Len(t, items, 5)

	var ids []string
	absent := 0
	for _, it := range items {
		ids = append(ids, it.ID)
		if !it.HasAvatar() {
			absent++
		}
	}
	require.Equal(t, []string{"1", "2", "3", "4", "5"}, ids)
	require.Equal(t, 2, absent)
	require.Equal(t, "https://i.redd.it/ann.png", items[0].AvatarURL)
	require.Empty(t, items[1].AvatarURL)
	require.Empty(t, items[3].AvatarURL)
	require.Equal(t, []string{"golang:20"}, api.topCalls)
}

func TestFeedPrimaryFailureMakesNoAvatarCalls(t *testing.T) {
	api := &mockAPI{
		topErr: map[string]error{"golang": errors.New("HTTP error: 503 Service Unavailable")},
	}
	l := New(api, Options{})

	st := l.Feed(context.Background(), "golang")
	require.True(t, st.IsFailed())
	require.Equal(t, "Error fetching posts: HTTP error: 503 Service Unavailable", st.Reason())
	require.Equal(t, int32(0), api.aboutCount.Load())
}

func TestFeedDefaultCategoryAndPageSize(t *testing.T) {
	api := &mockAPI{posts: map[string][]reddit.Post{"all": {}}}
	l := New(api, Options{})

	st := l.Feed(context.Background(), "")
	items, ok := st.Data()
	require.True(t, ok)
	require.NotNil(t, items)
	require.Empty(t, items)
	require.Equal(t, []string{"all:20"}, api.topCalls)
}

func TestFeedLooksUpEachAuthorOnce(t *testing.T) {
	api := &mockAPI{
		posts: map[string][]reddit.Post{
			"all": {post("1", "ann"), post("2", "ann"), post("3", "[deleted]"), post("4", ""), post("5", "bob")},
		},
		users: map[string]reddit.User{
			"ann": user("https://i.redd.it/ann.png"),
			"bob": user("https://i.redd.it/bob.png"),
		},
	}
	l := New(api, Options{MaxAvatarLookups: 1})

	items, ok := l.Feed(context.Background(), "all").Data()
	require.True(t, ok)
	require.Equal(t, int32(2), api.aboutCount.Load())
	require.Equal(t, items[0].AvatarURL, items[1].AvatarURL)
	require.Empty(t, items[2].AvatarURL)
	require.Empty(t, items[3].AvatarURL)
	require.Equal(t, "https://i.redd.it/bob.png", items[4].AvatarURL)
}

func TestDetailEmptyFirstElement(t *testing.T) {
	api := &mockAPI{thread: &reddit.Thread{}}
	l := New(api, Options{})

	st := l.Detail(context.Background(), "golang", "abc")
	require.True(t, st.IsFailed())
	require.Equal(t, "Post not found", st.Reason())
}

func TestDetailMissingKeyDoesNoIO(t *testing.T) {
	api := &mockAPI{threadErr: errors.New("should not be called")}
	l := New(api, Options{})

	for _, tc := range [][2]string{{"", "abc"}, {"golang", ""}} {
		st := l.Detail(context.Background(), tc[0], tc[1])
		require.True(t, st.IsFailed())
		require.Equal(t, ReasonNotFound, st.Reason())
	}
}

func TestDetailPrimaryFailure(t *testing.T) {
	api := &mockAPI{threadErr: errors.New("HTTP error: 403 Forbidden")}
	l := New(api, Options{})

	st := l.Detail(context.Background(), "golang", "abc")
	require.Equal(t, "Error fetching post details: HTTP error: 403 Forbidden", st.Reason())
	require.Equal(t, int32(0), api.aboutCount.Load())
}

func TestDetailRepliesWithOneFailedAvatar(t *testing.T) {
	api := &mockAPI{
		thread: &reddit.Thread{
			Post: postListing(post("abc", "op")),
			Replies: commentListing([]string{"t1", "t1", "t1", "more"},
				reddit.Comment{ID: "c1", Author: "r1", Body: "one", CreatedUTC: 1700000100},
				reddit.Comment{ID: "c2", Author: "r2", Body: "two"},
				reddit.Comment{ID: "c3", Author: "r3", Body: "three"},
				reddit.Comment{ID: "more1"},
			),
		},
		users: map[string]reddit.User{
			"op": user("https://i.redd.it/op.png"),
			"r1": user("https://i.redd.it/r1.png"),
			"r3": {IconImg: "https://styles.redditmedia.com/r3.jpg"},
		},
		aboutErr: map[string]error{"r2": errors.New("boom")},
	}
	l := New(api, Options{})

	st := l.Detail(context.Background(), "golang", "abc")
	d, ok := st.Data()
	require.True(t, ok, "reason: %s", st.Reason())
	require.Equal(t, "abc", d.Item.ID)
	require.Equal(t, "https://i.redd.it/op.png", d.Item.AvatarURL)
	require.Len(t, d.Replies, 3)

	withAvatar := 0
	for _, r := range d.Replies {
		if r.AvatarURL != "" {
			withAvatar++
		}
	}
	require.Equal(t, 2, withAvatar)
	require.Empty(t, d.Replies[1].AvatarURL)
	require.Equal(t, "https://styles.redditmedia.com/r3.jpg", d.Replies[2].AvatarURL)
	require.Equal(t, time.Unix(1700000100, 0).UTC(), d.Replies[0].Created)
	require.Equal(t, int32(4), api.aboutCount.Load())
}

func TestDailyConcatenatesInDeclaredOrder(t *testing.T) {
	api := &mockAPI{
		posts: map[string][]reddit.Post{
			"AskReddit": {post("a1", "x"), post("a2", "x")},
			"news":      {post("n1", "y")},
			"movies":    {post("m1", "z"), post("m2", "z"), post("m3", "z"), post("m4", "z"), post("m5", "z"), post("m6", "z")},
		},
	}
	l := New(api, Options{})

	items, ok := l.Daily(context.Background()).Data()
	require.True(t, ok)

	var ids []string
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	require.Equal(t, []string{"a1", "a2", "n1", "m1", "m2", "m3", "m4", "m5"}, ids)
	require.Equal(t, int32(0), api.aboutCount.Load(), "daily items carry no avatars")
	require.ElementsMatch(t, []string{"AskReddit:5", "news:5", "movies:5"}, api.topCalls)
}

func TestDailyOneFailureFailsBatch(t *testing.T) {
	api := &mockAPI{
		posts: map[string][]reddit.Post{
			"AskReddit": {post("a1", "x")},
			"movies":    {post("m1", "z")},
		},
		topErr: map[string]error{"news": errors.New("HTTP error: 500 Internal Server Error")},
	}
	l := New(api, Options{})

	st := l.Daily(context.Background())
	require.True(t, st.IsFailed())
	require.True(t, strings.HasPrefix(st.Reason(), "Error fetching daily threads: "))
	require.Contains(t, st.Reason(), "news")
	_, ok := st.Data()
	require.False(t, ok)
}

func TestDailyFeedSource(t *testing.T) {
	const feedURL = "https://blog.example/feed.xml"
	published := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	api := &mockAPI{
		posts: map[string][]reddit.Post{"golang": {post("g1", "x")}},
		entries: map[string][]reddit.FeedEntry{
			feedURL: {
				{ID: "e1", Title: "Release notes", Link: "https://blog.example/1", FeedTitle: "Blog", Published: published, ImageURL: "https://blog.example/1.png"},
				{ID: "e2", Title: "Second", Link: "https://blog.example/2", FeedTitle: "Blog"},
				{ID: "e3", Title: "Third", Link: "https://blog.example/3", FeedTitle: "Blog"},
			},
		},
	}
	l := New(api, Options{DailySources: []string{feedURL, "golang"}, DailyLimit: 2})

	items, ok := l.Daily(context.Background()).Data()
	require.True(t, ok)
	require.Len(t, items, 3)
	require.Equal(t, model.Item{
		ID: "e1", Title: "Release notes", URL: "https://blog.example/1", Source: "Blog",
		Created: published, MediaURL: "https://blog.example/1.png",
	}, items[0])
	require.Equal(t, "g1", items[2].ID)
}

func TestPopularIcons(t *testing.T) {
	api := &mockAPI{
		subs: []reddit.Subreddit{
			{DisplayName: "icon", IconImg: "https://b.thumbs/i.png?a=1&amp;b=2", CommunityIcon: "https://ignored"},
			{DisplayName: "community", CommunityIcon: "https://styles.redditmedia.com/c.png?width=256&amp;s=abc"},
			{DisplayName: "relative", CommunityIcon: "/static/c.png"},
			{DisplayName: "none"},
		},
	}
	l := New(api, Options{DefaultCommunityIcon: "/fallback.png"})

	subs, ok := l.Popular(context.Background()).Data()
	require.True(t, ok)
	require.Equal(t, "https://b.thumbs/i.png?a=1&b=2", subs[0].IconURL)
	require.Equal(t, "https://styles.redditmedia.com/c.png", subs[1].IconURL)
	require.Equal(t, "/fallback.png", subs[2].IconURL)
	require.Equal(t, "/fallback.png", subs[3].IconURL)
	require.Equal(t, int32(0), api.aboutCount.Load())
}

func TestPopularIdentity(t *testing.T) {
	api := &mockAPI{
		subs: []reddit.Subreddit{
			{ID: "2qh1i", DisplayName: "AskReddit", DisplayNamePrefixed: "r/AskReddit"},
			{ID: "2qh0u", DisplayName: "pics"},
		},
	}
	subs, ok := New(api, Options{}).Popular(context.Background()).Data()
	require.True(t, ok)
	require.Equal(t, "2qh1i", subs[0].ID)
	require.Equal(t, "r/AskReddit", subs[0].PrefixedName)
	require.Equal(t, "2qh0u", subs[1].ID)
	require.Equal(t, "r/pics", subs[1].PrefixedName)
}

func TestIconForChecksAbsoluteBeforeStripping(t *testing.T) {
	tests := []struct {
		name string
		icon string
		want string
	}{
		{"absolute", "https://styles.redditmedia.com/c.png?width=256&amp;s=abc", "https://styles.redditmedia.com/c.png"},
		{"http only in query", "/static/c.png?u=http://x", "/static/c.png"},
		{"relative", "/static/c.png", "/fallback.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, iconFor(reddit.Subreddit{CommunityIcon: tt.icon}, "/fallback.png"))
		})
	}
}

func TestPopularFailure(t *testing.T) {
	api := &mockAPI{subsErr: errors.New("down")}
	st := New(api, Options{}).Popular(context.Background())
	require.Equal(t, "Error fetching popular communities: down", st.Reason())
}

func TestPickAvatar(t *testing.T) {
	tests := []struct {
		name string
		u    reddit.User
		want string
	}{
		{"primary wins", reddit.User{SnoovatarImg: "https://i/s.png", IconImg: "https://i/i.png"}, "https://i/s.png"},
		{"secondary when primary empty", reddit.User{IconImg: "https://i/i.jpg"}, "https://i/i.jpg"},
		{"secondary when primary not an image", reddit.User{SnoovatarImg: "https://i/s.mp4", IconImg: "https://i/i.jpg"}, "https://i/i.jpg"},
		{"secondary cleaned", reddit.User{IconImg: "https://i/i?x=1&amp;format=png"}, "https://i/i?x=1&format=png"},
		{"neither displayable", reddit.User{SnoovatarImg: "https://i/s", IconImg: "https://i/i.png?size=2"}, ""},
		{"empty", reddit.User{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, pickAvatar(tt.u))
		})
	}
}

func TestMediaFor(t *testing.T) {
	withPreview := post("p", "a")
	withPreview.URL = "https://example.com/article"
	withPreview.Preview = &reddit.Preview{Images: make([]reddit.PreviewImage, 1)}
	withPreview.Preview.Images[0].Source.URL = "https://preview.redd.it/x.jpg?width=640&amp;s=1"

	direct := post("d", "a")
	direct.URL = "https://i.redd.it/x.gif"

	thumb := post("t", "a")
	thumb.URL = "https://example.com"
	thumb.Thumbnail = "https://b.thumbs.redditmedia.com/t.jpg"

	self := post("s", "a")
	self.Thumbnail = "self"

	require.Equal(t, "https://preview.redd.it/x.jpg?width=640&s=1", mediaFor(withPreview))
	require.Equal(t, "https://i.redd.it/x.gif", mediaFor(direct))
	require.Equal(t, "https://b.thumbs.redditmedia.com/t.jpg", mediaFor(thumb))
	require.Empty(t, mediaFor(self))
}

func TestCreatedAtFallsBackToCreated(t *testing.T) {
	require.Equal(t, time.Unix(10, 0).UTC(), createdAt(10, 20))
	require.Equal(t, time.Unix(20, 0).UTC(), createdAt(0, 20))
	require.True(t, createdAt(0, 0).IsZero())
}

// TestFeedOverHTTP runs the feed loader against a fake upstream through the
// real client, including a malformed avatar response.
func TestFeedOverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/r/pics/top.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kind":"Listing","data":{"children":[
			{"kind":"t3","data":{"id":"1","author":"good","title":"A","url":"https://i.redd.it/a.jpg","created_utc":1700000000}},
			{"kind":"t3","data":{"id":"2","author":"broken","title":"B","thumbnail":"default"}}
		]}}`))
	})
	mux.HandleFunc("/user/good/about.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kind":"t2","data":{"snoovatar_img":"https://i.redd.it/snoo.png"}}`))
	})
	mux.HandleFunc("/user/broken/about.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := reddit.New(reddit.Options{BaseURL: srv.URL})
	require.NoError(t, err)

	items, ok := New(client, Options{}).Feed(context.Background(), "pics").Data()
	require.True(t, ok)
	require.Len(t, items, 2)
	require.Equal(t, "https://i.redd.it/snoo.png", items[0].AvatarURL)
	require.Equal(t, "https://i.redd.it/a.jpg", items[0].MediaURL)
	require.Empty(t, items[1].AvatarURL)
	require.Empty(t, items[1].MediaURL)
}
