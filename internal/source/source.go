// Package source resolves where a picture comes from into raw bytes.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"diamond-pattern/internal/logger"
	"diamond-pattern/internal/models"
)

type Kind int

const (
	// KindNone reuses whatever original the pipeline already holds.
	KindNone Kind = iota
	KindBlob
	KindFile
	KindURL
)

// Source is an unresolved reference to an image.
type Source struct {
	Kind Kind
	Name string
	Data []byte
	Ref  string
}

var None = Source{}

func Blob(name string, data []byte) Source {
	return Source{Kind: KindBlob, Name: name, Data: data}
}

func File(path string) Source {
	return Source{Kind: KindFile, Name: filepath.Base(path), Ref: path}
}

func URL(ref string) Source {
	name := ref
	if i := strings.LastIndex(ref, "/"); i >= 0 && i < len(ref)-1 {
		name = ref[i+1:]
	}
	if i := strings.IndexAny(name, "?#"); i > 0 {
		name = name[:i]
	}
	return Source{Kind: KindURL, Name: name, Ref: ref}
}

// Parse picks URL for http(s) references and File for anything else.
// An empty argument yields None.
func Parse(arg string) Source {
	arg = strings.TrimSpace(arg)
	switch {
	case arg == "":
		return None
	case strings.HasPrefix(arg, "http://"), strings.HasPrefix(arg, "https://"):
		return URL(arg)
	default:
		return File(arg)
	}
}

func (s Source) String() string {
	switch s.Kind {
	case KindBlob:
		return "blob:" + s.Name
	case KindFile:
		return "file:" + s.Ref
	case KindURL:
		return s.Ref
	default:
		return "none"
	}
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// IsImageName reports whether name carries a supported image extension.
func IsImageName(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Extensions lists the supported image extensions for file dialogs.
func Extensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}
}

// Resolver turns a Source into bytes. Remote references are fetched once;
// there is no retry.
type Resolver struct {
	client   *http.Client
	maxBytes int64
	logger   logger.Logger
}

func NewResolver(timeout time.Duration, maxBytes int64, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Resolver{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		logger:   log,
	}
}

// WithClient swaps the HTTP client.
func (r *Resolver) WithClient(c *http.Client) *Resolver {
	r.client = c
	return r
}

// Resolve returns nil without error for None. Every failure wraps
// models.ErrFetch.
func (r *Resolver) Resolve(ctx context.Context, s Source) (*models.ImageSource, error) {
	var (
		data []byte
		err  error
	)

	switch s.Kind {
	case KindNone:
		return nil, nil
	case KindBlob:
		data = s.Data
	case KindFile:
		data, err = r.readFile(s.Ref)
	case KindURL:
		data, err = r.fetch(ctx, s.Ref)
	default:
		err = fmt.Errorf("unknown source kind %d", s.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrFetch, s, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s: empty", models.ErrFetch, s)
	}

	r.logger.Debug("SourceResolver", "source resolved", map[string]interface{}{
		"source":     s.String(),
		"size_bytes": len(data),
	})

	return models.NewImageSource(s.Name, data), nil
}

func (r *Resolver) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if r.maxBytes > 0 && info.Size() > r.maxBytes {
		return nil, fmt.Errorf("file is %d bytes, limit %d", info.Size(), r.maxBytes)
	}
	return os.ReadFile(path)
}

func (r *Resolver) fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if r.maxBytes > 0 {
		body = io.LimitReader(resp.Body, r.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if r.maxBytes > 0 && int64(len(data)) > r.maxBytes {
		return nil, errTooLarge
	}
	return data, nil
}

var errTooLarge = errors.New("response exceeds size limit")
