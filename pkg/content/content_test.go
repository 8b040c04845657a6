package content

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/blogadmin/pkg/api"
	"github.com/mchmarny/blogadmin/pkg/auth"
	"github.com/mchmarny/blogadmin/pkg/nav"
	"github.com/mchmarny/blogadmin/pkg/store"
)

// recorded is what the fake backend saw for one request.
type recorded struct {
	method string
	path   string
	query  string
	body   string
}

// recorder collects requests from the server goroutine.
type recorder struct {
	mu   sync.Mutex
	reqs []recorded
}

func (r *recorder) add(rec recorded) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, rec)
}

func (r *recorder) list() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.reqs...)
}

func newClient(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*api.Client, *recorder) {
	t.Helper()

	seen := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			b, _ := io.ReadAll(r.Body)
			rec.body = string(b)
		}
		seen.add(rec)
		respond(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := api.New(srv.URL+"/api", auth.NewSession(store.NewMemory()))
	require.NoError(t, err)
	return c, seen
}

func respondJSON(body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestPosts_List(t *testing.T) {
	c, seen := newClient(t, respondJSON(`{
		"content":[{"id":1,"title":"Hello","tags":["go"],"category":{"id":3,"label":"Go","href":"/blog/go"},
		            "author":{"id":9,"nickname":"labit"},"publishedDate":"2025-02-01T10:30:00.123"}],
		"totalElements":11,"totalPages":2,"number":0,"size":10,"first":true,"last":false}`))

	page, err := NewPosts(c).List(context.Background(), 0, 0)
	require.NoError(t, err)

	require.Len(t, page.Content, 1)
	p := page.Content[0]
	assert.Equal(t, nav.ID("1"), p.ID)
	assert.Equal(t, "/blog/go", p.Category.Href)
	assert.Equal(t, "labit", p.Author.Nickname)
	assert.True(t, page.HasNext())

	ts, ok := p.Published()
	require.True(t, ok)
	assert.Equal(t, 30, ts.Minute())

	assert.Equal(t, "/api/posts", seen.list()[0].path)
	assert.Equal(t, "page=0&size=10", seen.list()[0].query)
}

func TestPosts_Queries(t *testing.T) {
	ctx := context.Background()
	c, seen := newClient(t, respondJSON(`{"content":[],"last":true}`))
	s := NewPosts(c)

	_, err := s.Search(ctx, "go generics", 1, 5)
	require.NoError(t, err)
	_, err = s.ByCategory(ctx, "3", 0, 10)
	require.NoError(t, err)
	_, err = s.ByTag(ctx, "go", 2, 10)
	require.NoError(t, err)

	require.Len(t, seen.list(), 3)
	assert.Equal(t, "/api/posts/search", seen.list()[0].path)
	assert.Equal(t, "keyword=go+generics&page=1&size=5", seen.list()[0].query)
	assert.Equal(t, "/api/posts/category/3", seen.list()[1].path)
	assert.Equal(t, "/api/posts/tag/go", seen.list()[2].path)

	_, err = s.Search(ctx, "", 0, 0)
	assert.Error(t, err)
	_, err = s.ByTag(ctx, "", 0, 0)
	assert.Error(t, err)
	_, err = s.ByCategory(ctx, "", 0, 0)
	assert.ErrorIs(t, err, nav.ErrMissingID)
	assert.Len(t, seen.list(), 3)
}

func TestPosts_CRUD(t *testing.T) {
	ctx := context.Background()
	c, seen := newClient(t, respondJSON(`{"id":5,"title":"T","liked":true,"likeCount":3}`))
	s := NewPosts(c)

	_, err := s.Create(ctx, PostRequest{Title: "T"})
	assert.Error(t, err, "content required")

	p, err := s.Create(ctx, PostRequest{Title: "T", Content: "body", CategoryID: "3", Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, nav.ID("5"), p.ID)
	assert.JSONEq(t, `{"title":"T","content":"body","tags":["go"],"categoryId":3}`, seen.list()[0].body)

	_, err = s.Get(ctx, "5")
	require.NoError(t, err)
	_, err = s.Update(ctx, "5", PostRequest{Title: "T2", Content: "body"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "5"))

	like, err := s.ToggleLike(ctx, "5")
	require.NoError(t, err)
	assert.True(t, like.Liked)
	assert.Equal(t, int64(3), like.LikeCount)

	methods := make([]string, 0, len(seen.list()))
	for _, r := range seen.list() {
		methods = append(methods, r.method+" "+r.path)
	}
	assert.Equal(t, []string{
		"POST /api/posts",
		"GET /api/posts/5",
		"PUT /api/posts/5",
		"DELETE /api/posts/5",
		"POST /api/posts/5/like",
	}, methods)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	c, seen := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			respondJSON(`[{"id":1,"postId":5,"content":"hi","depth":0,"replies":[{"id":2,"postId":5,"parentId":1,"depth":1,"content":"re"}]}]`)(w, r)
		default:
			respondJSON(`{"id":3,"postId":5,"content":"new"}`)(w, r)
		}
	})
	s := NewComments(c)

	threads, err := s.ByPost(ctx, "5")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, nav.ID("1"), threads[0].Replies[0].ParentID)

	_, err = s.Create(ctx, CommentRequest{PostID: "5", ParentID: "1", Content: "new"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"postId":5,"parentId":1,"content":"new"}`, seen.list()[1].body)

	_, err = s.Update(ctx, "3", "edited")
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"edited"}`, seen.list()[2].body)

	require.NoError(t, s.Delete(ctx, "3"))
	_, err = s.ToggleLike(ctx, "3")
	require.NoError(t, err)

	_, err = s.Recent(ctx, 0)
	require.NoError(t, err)
	last := seen.list()[len(seen.list())-1]
	assert.Equal(t, "/api/comments/recent", last.path)
	assert.Equal(t, "limit=10", last.query)

	_, err = s.Create(ctx, CommentRequest{PostID: "5"})
	assert.Error(t, err)
	_, err = s.Update(ctx, "", "x")
	assert.ErrorIs(t, err, nav.ErrMissingID)
}

func TestAssets(t *testing.T) {
	ctx := context.Background()
	c, seen := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/assets/upload" {
			if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
				return
			}
			assert.Equal(t, "7", r.FormValue("folderId"))
			f, hdr, err := r.FormFile("file")
			if !assert.NoError(t, err) {
				return
			}
			defer f.Close()
			b, _ := io.ReadAll(f)
			respondJSON(`{"id":11,"type":"file","name":"` + hdr.Filename + `","size":` + jsonInt(len(b)) + `}`)(w, r)
			return
		}
		respondJSON(`{"id":7,"type":"folder","name":"img"}`)(w, r)
	})
	s := NewAssets(c)

	a, err := s.Upload(ctx, "logo.png", strings.NewReader("PNG"), "7")
	require.NoError(t, err)
	assert.Equal(t, "logo.png", a.Name)
	assert.Equal(t, int64(3), a.Size)

	_, err = s.CreateFolder(ctx, FolderRequest{Name: "img"})
	require.NoError(t, err)
	_, err = s.UpdateFolder(ctx, "7", FolderRequest{Name: "images"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteFolder(ctx, "7"))
	require.NoError(t, s.Move(ctx, "11", ""))
	require.NoError(t, s.Reorder(ctx, []AssetOrder{{ID: "11", SortOrder: 1}}))
	require.NoError(t, s.DeleteFile(ctx, "11"))

	var paths []string
	for _, r := range seen.list() {
		paths = append(paths, r.method+" "+r.path)
	}
	assert.Equal(t, []string{
		"POST /api/assets/upload",
		"POST /api/assets/folder",
		"PUT /api/assets/folder/7",
		"DELETE /api/assets/folder/7",
		"PATCH /api/assets/11/move",
		"PUT /api/assets/order",
		"DELETE /api/assets/file/11",
	}, paths)
	assert.JSONEq(t, `{"targetFolderId":null}`, seen.list()[4].body)

	_, err = s.CreateFolder(ctx, FolderRequest{})
	assert.Error(t, err)
	_, err = s.Upload(ctx, "", strings.NewReader(""), "")
	assert.Error(t, err)
}

func TestFolderTreeAndFiles(t *testing.T) {
	var all []Asset
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":1,"type":"folder","name":"b","sortOrder":2},
		{"id":2,"type":"folder","name":"a","sortOrder":1},
		{"id":3,"type":"folder","name":"a1","parentId":2},
		{"id":4,"type":"file","name":"x.png","folderId":2},
		{"id":5,"type":"file","name":"top.png"}
	]`), &all))

	tree := FolderTree(all)
	require.Len(t, tree, 2)
	assert.Equal(t, "a", tree[0].Name)
	assert.Equal(t, "a1", tree[0].Children[0].Name)
	assert.Equal(t, "b", tree[1].Name)

	assert.Len(t, FilesIn(all, "2"), 1)
	assert.Equal(t, "top.png", FilesIn(all, "")[0].Name)
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestPosts_Listings(t *testing.T) {
	ctx := context.Background()
	c, seen := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/posts/author/") {
			respondJSON(`{"content":[{"id":4,"title":"Mine"}],"last":true}`)(w, r)
			return
		}
		respondJSON(`[{"id":1,"title":"A","isFeatured":true},{"id":2,"title":"B"}]`)(w, r)
	})
	s := NewPosts(c)

	featured, err := s.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.True(t, featured[0].Featured)

	_, err = s.Popular(ctx, 5)
	require.NoError(t, err)
	_, err = s.Recent(ctx, 0)
	require.NoError(t, err)

	mine, err := s.ByAuthor(ctx, "9", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "Mine", mine.Content[0].Title)

	_, err = s.ByAuthor(ctx, "", 0, 0)
	assert.ErrorIs(t, err, nav.ErrMissingID)

	var got []string
	for _, r := range seen.list() {
		got = append(got, r.path+"?"+r.query)
	}
	assert.Equal(t, []string{
		"/api/posts/featured?",
		"/api/posts/popular?limit=5",
		"/api/posts/recent?limit=10",
		"/api/posts/author/9?page=1&size=10",
	}, got)
}

func TestComments_ByAuthor(t *testing.T) {
	c, seen := newClient(t, respondJSON(`{"content":[{"id":1,"postId":5,"content":"hi"}],"totalPages":3,"number":0}`))

	page, err := NewComments(c).ByAuthor(context.Background(), "9", 0, 20)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.True(t, page.HasNext())

	assert.Equal(t, "/api/comments/author/9", seen.list()[0].path)
	assert.Equal(t, "page=0&size=20", seen.list()[0].query)

	_, err = NewComments(c).ByAuthor(context.Background(), "", 0, 0)
	assert.ErrorIs(t, err, nav.ErrMissingID)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	c, seen := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/dashboard/stats":
			respondJSON(`{"users":{"total":12,"growth":8.5},"posts":{"total":40,"publishedToday":2},
				"assets":{"totalSize":2048},"views":{"today":300}}`)(w, r)
		case "/api/admin/dashboard/system-status":
			respondJSON(`{"status":"warning","services":[{"name":"db","status":"healthy"}],
				"database":{"status":"up","connectionCount":3,"maxConnections":10,"responseTime":1.5}}`)(w, r)
		default:
			respondJSON(`[{"id":7,"user":"kim","userId":"1","action":"POST_CREATE","resourceId":40}]`)(w, r)
		}
	})
	d := NewDashboard(c)

	stats, err := d.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Users.Total)
	assert.InDelta(t, 8.5, stats.Users.Growth, 0.001)
	assert.Equal(t, int64(2), stats.Posts.PublishedToday)
	assert.Equal(t, int64(300), stats.Views.Today)

	status, err := d.SystemStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.Healthy())
	require.NotNil(t, status.Database)
	assert.Equal(t, 10, status.Database.MaxConnections)
	assert.Nil(t, status.Resources)

	logs, err := d.ActivityLogs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, nav.ID("40"), logs[0].ResourceID)

	last := seen.list()[2]
	assert.Equal(t, "/api/admin/dashboard/activity-logs", last.path)
	assert.Equal(t, "limit=10", last.query)
}

func TestUploads(t *testing.T) {
	ctx := context.Background()
	c, seen := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/upload/validate-url" {
			respondJSON(`{"valid":true,"url":"` + r.URL.Query().Get("url") + `"}`)(w, r)
			return
		}
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		_, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		respondJSON(`{"success":true,"fileUrl":"/api/files/x/2025/01/` + hdr.Filename +
			`","fileName":"` + r.FormValue("type") + `"}`)(w, r)
	})
	s := NewUploads(c)

	for kind, typ := range map[string]string{
		UploadImage:     "profile",
		UploadThumbnail: "thumbnail",
		UploadFile:      "",
	} {
		up, err := s.Upload(ctx, kind, "a.png", strings.NewReader("PNG"))
		require.NoError(t, err, kind)
		assert.Equal(t, "/api/files/x/2025/01/a.png", up.FileURL)
		assert.Equal(t, typ, up.FileName, "type field of %s upload", kind)
	}

	check, err := s.ValidateURL(ctx, "http://cdn/a.png")
	require.NoError(t, err)
	assert.True(t, check.Valid)
	assert.Equal(t, "url=http%3A%2F%2Fcdn%2Fa.png", seen.list()[3].query)

	_, err = s.Upload(ctx, "video", "a.mp4", strings.NewReader(""))
	assert.Error(t, err)
	_, err = s.Upload(ctx, UploadFile, "", strings.NewReader(""))
	assert.Error(t, err)
	_, err = s.ValidateURL(ctx, "")
	assert.Error(t, err)
	assert.Len(t, seen.list(), 4)
}

func TestFiles(t *testing.T) {
	ctx := context.Background()
	c, seen := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/files/list/"):
			respondJSON(`["profiles/2025/01/a.png"]`)(w, r)
		case strings.HasPrefix(r.URL.Path, "/api/files/exists/"):
			assert.Empty(t, r.Header.Get("Authorization"))
			respondJSON(`{"exists":true}`)(w, r)
		case r.URL.Path == "/api/files/stats":
			respondJSON(`{"totalSize":1048576,"totalSizeMB":1.0,"profileImageCount":1}`)(w, r)
		default:
			respondJSON(`{"success":true}`)(w, r)
		}
	})
	s := NewFiles(c)

	files, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, files, 1)

	ref, ok := ParseFileURL("http://localhost:10001/api/files/" + files[0])
	require.True(t, ok)
	assert.Equal(t, FileRef{Dir: "profiles", YearMonth: "2025", Name: "01/a.png"}, ref)

	ref, ok = ParseFileURL("profiles/2025-01/a b.png")
	require.True(t, ok)

	exists, err := s.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, s.Delete(ctx, ref))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), stats.TotalSize)

	var got []string
	for _, r := range seen.list() {
		got = append(got, r.method+" "+r.path)
	}
	assert.Equal(t, []string{
		"GET /api/files/list/profiles",
		"GET /api/files/exists/profiles/2025-01/a b.png",
		"DELETE /api/files/profiles/2025-01/a b.png",
		"GET /api/files/stats",
	}, got)

	_, ok = ParseFileURL("/api/files/profiles/a.png")
	assert.False(t, ok)
	assert.Error(t, s.Delete(ctx, FileRef{Dir: "profiles"}))
}
