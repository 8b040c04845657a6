package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mchmarny/blogadmin/pkg/api"
	"github.com/mchmarny/blogadmin/pkg/nav"
)

// Comment is a post comment. Replies nest one level per depth.
type Comment struct {
	ID           nav.ID    `json:"id"`
	PostID       nav.ID    `json:"postId"`
	Content      string    `json:"content"`
	Author       *Author   `json:"author,omitempty"`
	ParentID     nav.ID    `json:"parentId,omitempty"`
	Depth        int       `json:"depth"`
	Deleted      bool      `json:"isDeleted"`
	LikeCount    int64     `json:"likeCount"`
	CreatedDate  string    `json:"createdDate,omitempty"`
	ModifiedDate string    `json:"modifiedDate,omitempty"`
	Replies      []Comment `json:"replies,omitempty"`
}

// CommentRequest is the body of comment create and update calls.
type CommentRequest struct {
	PostID   nav.ID `json:"postId,omitempty"`
	ParentID nav.ID `json:"parentId,omitempty"`
	Content  string `json:"content"`
}

// Comments calls the /comments endpoints.
type Comments struct {
	api api.Doer
}

// NewComments returns a comments service issuing requests through d.
func NewComments(d api.Doer) *Comments {
	return &Comments{api: d}
}

// ByPost returns the comment threads of a post.
func (s *Comments) ByPost(ctx context.Context, post nav.ID) ([]Comment, error) {
	if post.IsZero() {
		return nil, nav.ErrMissingID
	}
	var out []Comment
	if err := s.api.Do(ctx, api.Request{Path: "/comments/post/" + url.PathEscape(post.String())}, &out); err != nil {
		return nil, fmt.Errorf("list comments of post %s: %w", post, err)
	}
	return out, nil
}

// Create adds a comment, or a reply when ParentID is set.
func (s *Comments) Create(ctx context.Context, req CommentRequest) (*Comment, error) {
	if req.PostID.IsZero() {
		return nil, nav.ErrMissingID
	}
	if req.Content == "" {
		return nil, errors.New("comment content is required")
	}
	var c Comment
	if err := s.api.Do(ctx, api.Request{Method: http.MethodPost, Path: "/comments", Body: req}, &c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &c, nil
}

// Update replaces the text of comment id.
func (s *Comments) Update(ctx context.Context, id nav.ID, content string) (*Comment, error) {
	if id.IsZero() {
		return nil, nav.ErrMissingID
	}
	if content == "" {
		return nil, errors.New("comment content is required")
	}
	var c Comment
	err := s.api.Do(ctx, api.Request{
		Method: http.MethodPut,
		Path:   commentPath(id),
		Body:   CommentRequest{Content: content},
	}, &c)
	if err != nil {
		return nil, fmt.Errorf("update comment %s: %w", id, err)
	}
	return &c, nil
}

// Delete removes comment id.
func (s *Comments) Delete(ctx context.Context, id nav.ID) error {
	if id.IsZero() {
		return nav.ErrMissingID
	}
	if err := s.api.Do(ctx, api.Request{Method: http.MethodDelete, Path: commentPath(id)}, nil); err != nil {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}
	return nil
}

// ToggleLike likes or unlikes comment id.
func (s *Comments) ToggleLike(ctx context.Context, id nav.ID) (*LikeResult, error) {
	if id.IsZero() {
		return nil, nav.ErrMissingID
	}
	var r LikeResult
	if err := s.api.Do(ctx, api.Request{Method: http.MethodPost, Path: commentPath(id) + "/like"}, &r); err != nil {
		return nil, fmt.Errorf("toggle like on comment %s: %w", id, err)
	}
	return &r, nil
}

// ByAuthor returns a page of the comments written by user author.
func (s *Comments) ByAuthor(ctx context.Context, author nav.ID, page, size int) (*Page[Comment], error) {
	if author.IsZero() {
		return nil, nav.ErrMissingID
	}
	var p Page[Comment]
	err := s.api.Do(ctx, api.Request{
		Path:  "/comments/author/" + url.PathEscape(author.String()),
		Query: pageQuery(page, size),
	}, &p)
	if err != nil {
		return nil, fmt.Errorf("list comments of user %s: %w", author, err)
	}
	return &p, nil
}

// Recent returns the latest comments across all posts.
func (s *Comments) Recent(ctx context.Context, limit int) ([]Comment, error) {
	var out []Comment
	if err := s.api.Do(ctx, api.Request{Path: "/comments/recent", Query: limitQuery(limit)}, &out); err != nil {
		return nil, fmt.Errorf("list recent comments: %w", err)
	}
	return out, nil
}

func commentPath(id nav.ID) string {
	return "/comments/" + url.PathEscape(id.String())
}
