package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/mchmarny/blogadmin/pkg/api"
	"github.com/mchmarny/blogadmin/pkg/nav"
)

// Asset kinds.
const (
	KindFolder = "folder"
	KindFile   = "file"
)

// Asset is a folder or an uploaded file of the asset library.
type Asset struct {
	ID        nav.ID  `json:"id"`
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	ParentID  nav.ID  `json:"parentId,omitempty"`
	FolderID  nav.ID  `json:"folderId,omitempty"`
	SortOrder int     `json:"sortOrder,omitempty"`
	URL       string  `json:"url,omitempty"`
	Size      int64   `json:"size,omitempty"`
	MimeType  string  `json:"mimeType,omitempty"`
	Children  []Asset `json:"children,omitempty"`
}

// IsFolder reports whether the asset is a folder.
func (a Asset) IsFolder() bool {
	return a.Type == KindFolder
}

// FolderTree nests the folders of a flat asset listing under their parents,
// siblings ordered by SortOrder. Files are skipped.
func FolderTree(assets []Asset) []Asset {
	byParent := make(map[nav.ID][]Asset)
	for _, a := range assets {
		if a.IsFolder() {
			byParent[a.ParentID] = append(byParent[a.ParentID], a)
		}
	}
	return buildFolders(byParent, "")
}

func buildFolders(byParent map[nav.ID][]Asset, parent nav.ID) []Asset {
	folders := byParent[parent]
	sort.SliceStable(folders, func(i, j int) bool {
		return folders[i].SortOrder < folders[j].SortOrder
	})

	out := make([]Asset, 0, len(folders))
	for _, f := range folders {
		f.Children = buildFolders(byParent, f.ID)
		out = append(out, f)
	}
	return out
}

// FilesIn returns the files stored in folder, or at the top level when
// folder is empty.
func FilesIn(assets []Asset, folder nav.ID) []Asset {
	var out []Asset
	for _, a := range assets {
		if a.Type == KindFile && a.FolderID == folder {
			out = append(out, a)
		}
	}
	return out
}

// FolderRequest is the body of folder create and update calls.
type FolderRequest struct {
	Name     string `json:"name"`
	ParentID nav.ID `json:"parentId,omitempty"`
}

// AssetOrder positions an asset among its siblings.
type AssetOrder struct {
	ID        nav.ID `json:"id"`
	SortOrder int    `json:"sortOrder"`
}

// Assets calls the /assets endpoints.
type Assets struct {
	api api.Doer
}

// NewAssets returns an assets service issuing requests through d.
func NewAssets(d api.Doer) *Assets {
	return &Assets{api: d}
}

// All returns every folder and file as a flat list.
func (s *Assets) All(ctx context.Context) ([]Asset, error) {
	var out []Asset
	if err := s.api.Do(ctx, api.Request{Path: "/assets/all"}, &out); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return out, nil
}

// CreateFolder adds a folder.
func (s *Assets) CreateFolder(ctx context.Context, req FolderRequest) (*Asset, error) {
	if req.Name == "" {
		return nil, errors.New("folder name is required")
	}
	var a Asset
	if err := s.api.Do(ctx, api.Request{Method: http.MethodPost, Path: "/assets/folder", Body: req}, &a); err != nil {
		return nil, fmt.Errorf("create folder %s: %w", req.Name, err)
	}
	return &a, nil
}

// UpdateFolder renames or moves folder id.
func (s *Assets) UpdateFolder(ctx context.Context, id nav.ID, req FolderRequest) (*Asset, error) {
	if id.IsZero() {
		return nil, nav.ErrMissingID
	}
	if req.Name == "" {
		return nil, errors.New("folder name is required")
	}
	var a Asset
	if err := s.api.Do(ctx, api.Request{Method: http.MethodPut, Path: folderPath(id), Body: req}, &a); err != nil {
		return nil, fmt.Errorf("update folder %s: %w", id, err)
	}
	return &a, nil
}

// DeleteFolder removes folder id.
func (s *Assets) DeleteFolder(ctx context.Context, id nav.ID) error {
	if id.IsZero() {
		return nav.ErrMissingID
	}
	if err := s.api.Do(ctx, api.Request{Method: http.MethodDelete, Path: folderPath(id)}, nil); err != nil {
		return fmt.Errorf("delete folder %s: %w", id, err)
	}
	return nil
}

// Move puts asset id into folder target. An empty target moves it to the top level.
func (s *Assets) Move(ctx context.Context, id, target nav.ID) error {
	if id.IsZero() {
		return nav.ErrMissingID
	}
	body := struct {
		TargetFolderID nav.ID `json:"targetFolderId"`
	}{TargetFolderID: target}

	err := s.api.Do(ctx, api.Request{
		Method: http.MethodPatch,
		Path:   "/assets/" + url.PathEscape(id.String()) + "/move",
		Body:   body,
	}, nil)
	if err != nil {
		return fmt.Errorf("move asset %s: %w", id, err)
	}
	return nil
}

// Reorder applies a batch of position changes.
func (s *Assets) Reorder(ctx context.Context, orders []AssetOrder) error {
	if len(orders) == 0 {
		return nil
	}
	if err := s.api.Do(ctx, api.Request{Method: http.MethodPut, Path: "/assets/order", Body: orders}, nil); err != nil {
		return fmt.Errorf("reorder assets: %w", err)
	}
	return nil
}

// Upload stores a file in folder, or at the top level when folder is empty.
func (s *Assets) Upload(ctx context.Context, name string, r io.Reader, folder nav.ID) (*Asset, error) {
	if name == "" {
		return nil, errors.New("file name is required")
	}

	form := &api.Form{
		Fields: map[string]string{},
		File:   &api.FormFile{Field: "file", Name: name, Content: r},
	}
	if !folder.IsZero() {
		form.Fields["folderId"] = folder.String()
	}

	var a Asset
	err := s.api.Do(ctx, api.Request{Method: http.MethodPost, Path: "/assets/upload", Form: form}, &a)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}
	return &a, nil
}

// DeleteFile removes file id.
func (s *Assets) DeleteFile(ctx context.Context, id nav.ID) error {
	if id.IsZero() {
		return nav.ErrMissingID
	}
	err := s.api.Do(ctx, api.Request{Method: http.MethodDelete, Path: "/assets/file/" + url.PathEscape(id.String())}, nil)
	if err != nil {
		return fmt.Errorf("delete file %s: %w", id, err)
	}
	return nil
}

func folderPath(id nav.ID) string {
	return "/assets/folder/" + url.PathEscape(id.String())
}
