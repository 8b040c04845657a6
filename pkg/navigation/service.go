// Package navigation fetches and edits the blog navigation tree and
// exposes the path resolver over HTTP.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mchmarny/blogadmin/pkg/api"
	"github.com/mchmarny/blogadmin/pkg/nav"
)

// Source provides a navigation tree.
type Source interface {
	Tree(ctx context.Context) ([]nav.Node, error)
}

// Request is the body of create and update calls.
type Request struct {
	Label       string `json:"label"`
	Href        string `json:"href"`
	ParentID    nav.ID `json:"parentId,omitempty"`
	SortOrder   int    `json:"sortOrder,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
	Active      *bool  `json:"isActive,omitempty"`
}

// Validate checks the fields the backend requires.
func (r Request) Validate() error {
	if r.Label == "" {
		return errors.New("label is required")
	}
	if r.Href == "" {
		return errors.New("href is required")
	}
	return nil
}

// Order moves a node to a position, optionally under a new parent.
// An empty ParentID moves it to the root.
type Order struct {
	ID        nav.ID `json:"id"`
	SortOrder int    `json:"sortOrder"`
	ParentID  nav.ID `json:"parentId"`
}

// Service calls the navigation endpoints of the blog API.
type Service struct {
	api api.Doer
}

// NewService returns a service issuing requests through d.
func NewService(d api.Doer) *Service {
	return &Service{api: d}
}

// Tree returns the navigation tree visible to the current user.
func (s *Service) Tree(ctx context.Context) ([]nav.Node, error) {
	var tree []nav.Node
	if err := s.api.Do(ctx, api.Request{Path: "/navigation/tree"}, &tree); err != nil {
		return nil, fmt.Errorf("get navigation tree: %w", err)
	}
	if err := nav.Validate(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Path returns the breadcrumb chain the backend resolves for href.
func (s *Service) Path(ctx context.Context, href string) ([]nav.Node, error) {
	var chain []nav.Node
	err := s.api.Do(ctx, api.Request{
		Path:  "/navigation/path",
		Query: url.Values{"href": {href}},
	}, &chain)
	if err != nil {
		return nil, fmt.Errorf("get navigation path %s: %w", href, err)
	}
	return chain, nil
}

// Create adds a menu and returns it as stored.
func (s *Service) Create(ctx context.Context, req Request) (*nav.Node, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var n nav.Node
	err := s.api.Do(ctx, api.Request{Method: http.MethodPost, Path: "/navigation/create", Body: req}, &n)
	if err != nil {
		return nil, fmt.Errorf("create navigation %s: %w", req.Href, err)
	}
	return &n, nil
}

// Update replaces the fields of menu id.
func (s *Service) Update(ctx context.Context, id nav.ID, req Request) (*nav.Node, error) {
	if id.IsZero() {
		return nil, nav.ErrMissingID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var n nav.Node
	err := s.api.Do(ctx, api.Request{Method: http.MethodPut, Path: nodePath(id), Body: req}, &n)
	if err != nil {
		return nil, fmt.Errorf("update navigation %s: %w", id, err)
	}
	return &n, nil
}

// Delete removes menu id.
func (s *Service) Delete(ctx context.Context, id nav.ID) error {
	if id.IsZero() {
		return nav.ErrMissingID
	}
	if err := s.api.Do(ctx, api.Request{Method: http.MethodDelete, Path: nodePath(id)}, nil); err != nil {
		return fmt.Errorf("delete navigation %s: %w", id, err)
	}
	return nil
}

// Reorder applies a batch of position changes.
func (s *Service) Reorder(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	for _, o := range orders {
		if o.ID.IsZero() {
			return nav.ErrMissingID
		}
	}
	err := s.api.Do(ctx, api.Request{Method: http.MethodPut, Path: "/navigation/order", Body: orders}, nil)
	if err != nil {
		return fmt.Errorf("reorder navigation: %w", err)
	}
	return nil
}

// ToggleStatus flips the active flag of menu id.
func (s *Service) ToggleStatus(ctx context.Context, id nav.ID) error {
	if id.IsZero() {
		return nav.ErrMissingID
	}
	err := s.api.Do(ctx, api.Request{Method: http.MethodPatch, Path: nodePath(id) + "/toggle-status"}, nil)
	if err != nil {
		return fmt.Errorf("toggle navigation %s: %w", id, err)
	}
	return nil
}

// SetParent moves menu id under parent. An empty parent moves it to the root.
func (s *Service) SetParent(ctx context.Context, id, parent nav.ID) error {
	if id.IsZero() {
		return nav.ErrMissingID
	}
	if id == parent {
		return fmt.Errorf("navigation %s cannot be its own parent", id)
	}

	body := struct {
		ParentID nav.ID `json:"parentId"`
	}{ParentID: parent}

	err := s.api.Do(ctx, api.Request{Method: http.MethodPatch, Path: nodePath(id) + "/parent", Body: body}, nil)
	if err != nil {
		return fmt.Errorf("set parent of navigation %s: %w", id, err)
	}
	return nil
}

// EvictCache drops the server-side navigation cache and returns the
// server's confirmation message.
func (s *Service) EvictCache(ctx context.Context) (string, error) {
	var msg string
	if err := s.api.Do(ctx, api.Request{Method: http.MethodPost, Path: "/navigation/cache/evict"}, &msg); err != nil {
		return "", fmt.Errorf("evict navigation cache: %w", err)
	}
	return msg, nil
}

func nodePath(id nav.ID) string {
	return "/navigation/" + url.PathEscape(id.String())
}
