package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mchmarny/blogadmin/pkg/api"
)

// Upload kinds, each with its own endpoint.
const (
	UploadImage     = "image"
	UploadFile      = "file"
	UploadThumbnail = "thumbnail"
)

// uploadTypes is the type form field the backend expects per kind.
var uploadTypes = map[string]string{
	UploadImage:     "profile",
	UploadThumbnail: "thumbnail",
}

// Uploaded is the response of the /upload endpoints.
type Uploaded struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName,omitempty"`
}

// URLCheck is the result of ValidateURL.
type URLCheck struct {
	Valid   bool   `json:"valid"`
	URL     string `json:"url"`
	Message string `json:"message,omitempty"`
}

// Uploads calls the /upload endpoints.
type Uploads struct {
	api api.Doer
}

// NewUploads returns an upload service issuing requests through d.
func NewUploads(d api.Doer) *Uploads {
	return &Uploads{api: d}
}

// Upload sends the content of r as a file of the given kind and returns
// where the backend stored it.
func (s *Uploads) Upload(ctx context.Context, kind, name string, r io.Reader) (*Uploaded, error) {
	switch kind {
	case UploadImage, UploadFile, UploadThumbnail:
	default:
		return nil, fmt.Errorf("unknown upload kind %q", kind)
	}
	if name == "" {
		return nil, errors.New("file name is required")
	}

	form := &api.Form{
		Fields: map[string]string{},
		File:   &api.FormFile{Field: "file", Name: name, Content: r},
	}
	if t, ok := uploadTypes[kind]; ok {
		form.Fields["type"] = t
	}

	var out Uploaded
	if err := s.api.Do(ctx, api.Request{Method: http.MethodPost, Path: "/upload/" + kind, Form: form}, &out); err != nil {
		return nil, fmt.Errorf("upload %s %s: %w", kind, name, err)
	}
	if !out.Success && out.FileURL == "" {
		return nil, fmt.Errorf("upload %s %s: %s", kind, name, out.Message)
	}
	return &out, nil
}

// ValidateURL asks the backend whether u points at an image.
func (s *Uploads) ValidateURL(ctx context.Context, u string) (*URLCheck, error) {
	if u == "" {
		return nil, errors.New("url is required")
	}
	var out URLCheck
	err := s.api.Do(ctx, api.Request{Path: "/upload/validate-url", Query: url.Values{"url": {u}}}, &out)
	if err != nil {
		return nil, fmt.Errorf("validate url: %w", err)
	}
	return &out, nil
}

// DefaultFileDir is the stored-file directory listed when none is given.
const DefaultFileDir = "profiles"

// FileRef locates a stored file as <dir>/<yyyy-mm>/<name> under /api/files.
type FileRef struct {
	Dir       string `json:"subDir"`
	YearMonth string `json:"yearMonth"`
	Name      string `json:"fileName"`
}

func (f FileRef) path() string {
	parts := []string{url.PathEscape(f.Dir), url.PathEscape(f.YearMonth)}
	for _, seg := range strings.Split(f.Name, "/") {
		parts = append(parts, url.PathEscape(seg))
	}
	return strings.Join(parts, "/")
}

func (f FileRef) validate() error {
	if f.Dir == "" || f.YearMonth == "" || f.Name == "" {
		return errors.New("file reference needs a directory, a month and a name")
	}
	return nil
}

// String returns the reference as the relative path the backend serves.
func (f FileRef) String() string {
	return f.Dir + "/" + f.YearMonth + "/" + f.Name
}

// ParseFileURL extracts the reference from a stored file URL such as
// http://host/api/files/profiles/2025-01/a.png or a bare
// profiles/2025-01/a.png. Anything past the month is the name.
func ParseFileURL(s string) (FileRef, bool) {
	if _, rest, ok := strings.Cut(s, "/api/files/"); ok {
		s = rest
	}
	parts := strings.SplitN(strings.TrimPrefix(s, "/"), "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return FileRef{}, false
	}
	return FileRef{Dir: parts[0], YearMonth: parts[1], Name: parts[2]}, true
}

// FileStats summarizes the upload directory.
type FileStats struct {
	TotalSize         int64    `json:"totalSize"`
	TotalSizeMB       float64  `json:"totalSizeMB"`
	ProfileImageCount int      `json:"profileImageCount"`
	UploadInfo        string   `json:"uploadInfo,omitempty"`
	ProfileImages     []string `json:"profileImages,omitempty"`
}

// Files calls the /files endpoints over stored uploads.
type Files struct {
	api api.Doer
}

// NewFiles returns a stored-files service issuing requests through d.
func NewFiles(d api.Doer) *Files {
	return &Files{api: d}
}

// List returns the stored files of dir, DefaultFileDir when empty.
func (s *Files) List(ctx context.Context, dir string) ([]string, error) {
	if dir == "" {
		dir = DefaultFileDir
	}
	var out []string
	if err := s.api.Do(ctx, api.Request{Path: "/files/list/" + url.PathEscape(dir)}, &out); err != nil {
		return nil, fmt.Errorf("list files in %s: %w", dir, err)
	}
	return out, nil
}

// Delete removes a stored file.
func (s *Files) Delete(ctx context.Context, f FileRef) error {
	if err := f.validate(); err != nil {
		return err
	}
	if err := s.api.Do(ctx, api.Request{Method: http.MethodDelete, Path: "/files/" + f.path()}, nil); err != nil {
		return fmt.Errorf("delete file %s: %w", f, err)
	}
	return nil
}

// Exists reports whether a stored file is present. The endpoint is public.
func (s *Files) Exists(ctx context.Context, f FileRef) (bool, error) {
	if err := f.validate(); err != nil {
		return false, err
	}
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := s.api.Do(ctx, api.Request{Path: "/files/exists/" + f.path(), Public: true}, &out); err != nil {
		return false, fmt.Errorf("check file %s: %w", f, err)
	}
	return out.Exists, nil
}

// Stats returns the upload directory summary.
func (s *Files) Stats(ctx context.Context) (*FileStats, error) {
	var out FileStats
	if err := s.api.Do(ctx, api.Request{Path: "/files/stats"}, &out); err != nil {
		return nil, fmt.Errorf("get file stats: %w", err)
	}
	return &out, nil
}
