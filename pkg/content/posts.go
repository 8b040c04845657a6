package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mchmarny/blogadmin/pkg/api"
	"github.com/mchmarny/blogadmin/pkg/nav"
)

// Author is the public profile attached to posts and comments.
type Author struct {
	ID           nav.ID `json:"id"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Category is the navigation entry a post is filed under.
type Category struct {
	ID    nav.ID `json:"id"`
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Post is a blog post as returned by the API.
type Post struct {
	ID            nav.ID    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	ThumbnailURL  string    `json:"thumbnailUrl,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Category      *Category `json:"category,omitempty"`
	Author        *Author   `json:"author,omitempty"`
	Status        string    `json:"status,omitempty"`
	ViewCount     int64     `json:"viewCount"`
	LikeCount     int64     `json:"likeCount"`
	CommentCount  int64     `json:"commentCount"`
	Featured      bool      `json:"isFeatured"`
	PublishedDate string    `json:"publishedDate,omitempty"`
	CreatedDate   string    `json:"createdDate,omitempty"`
	ModifiedDate  string    `json:"modifiedDate,omitempty"`
}

// Published parses PublishedDate, which the backend sends without a zone.
func (p Post) Published() (time.Time, bool) {
	s, _, _ := strings.Cut(p.PublishedDate, ".")
	t, err := time.Parse("2006-01-02T15:04:05", s)
	return t, err == nil
}

// PostRequest is the body of post create and update calls.
type PostRequest struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Summary      string   `json:"summary,omitempty"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	CategoryID   nav.ID   `json:"categoryId,omitempty"`
	Status       string   `json:"status,omitempty"`
	Featured     bool     `json:"isFeatured,omitempty"`
}

// Validate checks the fields the backend requires.
func (r PostRequest) Validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	if r.Content == "" {
		return errors.New("content is required")
	}
	return nil
}

// LikeResult is returned by the like toggles.
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// Posts calls the /posts endpoints.
type Posts struct {
	api api.Doer
}

// NewPosts returns a posts service issuing requests through d.
func NewPosts(d api.Doer) *Posts {
	return &Posts{api: d}
}

// List returns a page of posts.
func (s *Posts) List(ctx context.Context, page, size int) (*Page[Post], error) {
	return s.page(ctx, "/posts", pageQuery(page, size))
}

// Get returns a single post.
func (s *Posts) Get(ctx context.Context, id nav.ID) (*Post, error) {
	if id.IsZero() {
		return nil, nav.ErrMissingID
	}
	var p Post
	if err := s.api.Do(ctx, api.Request{Path: postPath(id)}, &p); err != nil {
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	return &p, nil
}

// Create publishes a new post.
func (s *Posts) Create(ctx context.Context, req PostRequest) (*Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var p Post
	if err := s.api.Do(ctx, api.Request{Method: http.MethodPost, Path: "/posts", Body: req}, &p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &p, nil
}

// Update replaces post id.
func (s *Posts) Update(ctx context.Context, id nav.ID, req PostRequest) (*Post, error) {
	if id.IsZero() {
		return nil, nav.ErrMissingID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var p Post
	if err := s.api.Do(ctx, api.Request{Method: http.MethodPut, Path: postPath(id), Body: req}, &p); err != nil {
		return nil, fmt.Errorf("update post %s: %w", id, err)
	}
	return &p, nil
}

// Delete removes post id.
func (s *Posts) Delete(ctx context.Context, id nav.ID) error {
	if id.IsZero() {
		return nav.ErrMissingID
	}
	if err := s.api.Do(ctx, api.Request{Method: http.MethodDelete, Path: postPath(id)}, nil); err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	return nil
}

// Search returns posts matching keyword.
func (s *Posts) Search(ctx context.Context, keyword string, page, size int) (*Page[Post], error) {
	if keyword == "" {
		return nil, errors.New("search keyword is required")
	}
	q := pageQuery(page, size)
	q.Set("keyword", keyword)
	return s.page(ctx, "/posts/search", q)
}

// ByCategory returns the posts filed under a navigation category.
func (s *Posts) ByCategory(ctx context.Context, category nav.ID, page, size int) (*Page[Post], error) {
	if category.IsZero() {
		return nil, nav.ErrMissingID
	}
	return s.page(ctx, "/posts/category/"+url.PathEscape(category.String()), pageQuery(page, size))
}

// ByTag returns the posts carrying tag.
func (s *Posts) ByTag(ctx context.Context, tag string, page, size int) (*Page[Post], error) {
	if tag == "" {
		return nil, errors.New("tag is required")
	}
	return s.page(ctx, "/posts/tag/"+url.PathEscape(tag), pageQuery(page, size))
}

// ByAuthor returns the posts written by user author.
func (s *Posts) ByAuthor(ctx context.Context, author nav.ID, page, size int) (*Page[Post], error) {
	if author.IsZero() {
		return nil, nav.ErrMissingID
	}
	return s.page(ctx, "/posts/author/"+url.PathEscape(author.String()), pageQuery(page, size))
}

// Featured returns the posts flagged as featured.
func (s *Posts) Featured(ctx context.Context) ([]Post, error) {
	return s.list(ctx, "/posts/featured", nil)
}

// Popular returns the most viewed posts.
func (s *Posts) Popular(ctx context.Context, limit int) ([]Post, error) {
	return s.list(ctx, "/posts/popular", limitQuery(limit))
}

// Recent returns the latest published posts.
func (s *Posts) Recent(ctx context.Context, limit int) ([]Post, error) {
	return s.list(ctx, "/posts/recent", limitQuery(limit))
}

// ToggleLike likes or unlikes post id for the current user.
func (s *Posts) ToggleLike(ctx context.Context, id nav.ID) (*LikeResult, error) {
	if id.IsZero() {
		return nil, nav.ErrMissingID
	}
	var r LikeResult
	if err := s.api.Do(ctx, api.Request{Method: http.MethodPost, Path: postPath(id) + "/like"}, &r); err != nil {
		return nil, fmt.Errorf("toggle like on post %s: %w", id, err)
	}
	return &r, nil
}

func (s *Posts) page(ctx context.Context, path string, q url.Values) (*Page[Post], error) {
	var p Page[Post]
	if err := s.api.Do(ctx, api.Request{Path: path, Query: q}, &p); err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	return &p, nil
}

func (s *Posts) list(ctx context.Context, path string, q url.Values) ([]Post, error) {
	var out []Post
	if err := s.api.Do(ctx, api.Request{Path: path, Query: q}, &out); err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	return out, nil
}

func postPath(id nav.ID) string {
	return "/posts/" + url.PathEscape(id.String())
}
