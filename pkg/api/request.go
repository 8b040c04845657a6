package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"
)

// Doer executes API requests. *Client implements it; services depend on
// this interface so they can be tested against fakes.
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

// Request describes one API call relative to the client's base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Body is encoded as JSON when non-nil.
	Body any

	// Form sends a multipart body instead of Body.
	Form *Form

	// Public requests carry no Authorization header and never trigger a refresh.
	Public bool
}

// Form is a multipart/form-data body.
type Form struct {
	Fields map[string]string
	File   *FormFile
}

// FormFile is the file part of a multipart upload.
type FormFile struct {
	Field   string
	Name    string
	Content io.Reader
}

// TokenPair is the backend login/refresh response.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType,omitempty"`
	ExpiresIn    int    `json:"expiresIn,omitempty"`
}

// encode renders the body once so it can be replayed on retry.
func (r Request) encode() ([]byte, string, error) {
	switch {
	case r.Form != nil:
		return r.Form.encode()
	case r.Body != nil:
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, "", fmt.Errorf("encode %s %s body: %w", r.Method, r.Path, err)
		}
		return b, "application/json", nil
	default:
		return nil, "", nil
	}
}

func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range f.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", k, err)
		}
	}

	if f.File != nil {
		field := f.File.Field
		if field == "" {
			field = "file"
		}
		part, err := w.CreateFormFile(field, f.File.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", f.File.Name, err)
		}
		if _, err := io.Copy(part, f.File.Content); err != nil {
			return nil, "", fmt.Errorf("read upload %s: %w", f.File.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

func methodOrGet(m string) string {
	if m == "" {
		return http.MethodGet
	}
	return m
}
