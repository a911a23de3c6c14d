package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Filesystem implements Store on a local directory. Keys map to relative file
// paths under the root; a sidecar file (key + ".meta") carries content type
// and user metadata. Not safe for concurrent writers beyond per-file
// creation.
type Filesystem struct {
	root string
}

// NewFilesystem returns a filesystem blob store rooted at path, creating the
// directory if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "./reportdata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Filesystem{root: root}, nil
}

// Driver returns the blob driver identifier.
func (f *Filesystem) Driver() Driver { return DriverFilesystem }

// sanitizeKey forbids path traversal and absolute paths.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid key traversal")
	}
	return clean, nil
}

func (f *Filesystem) pathFor(key string) (dataPath, metaPath string, err error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	dataPath = filepath.Join(f.root, k)
	return dataPath, dataPath + ".meta", nil
}

type metaSidecar struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ETag        string            `json:"etag"`
	Size        int64             `json:"size"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Put streams the blob to a temp file, then moves it into place atomically.
func (f *Filesystem) Put(_ context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	dataPath, metaPath, err := f.pathFor(key)
	if err != nil {
		return Info{}, err
	}
	if _, err := os.Stat(dataPath); err == nil {
		return Info{}, fmt.Errorf("blob %s already exists", key)
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return Info{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		_ = tmp.Close()
		return Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return Info{}, err
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return Info{}, err
	}
	now := time.Now().UTC()
	etag := hex.EncodeToString(h.Sum(nil))
	sidecar := metaSidecar{
		ContentType: opts.ContentType,
		Metadata:    cloneMetadata(opts.Metadata),
		ETag:        etag,
		Size:        size,
		CreatedAt:   now,
	}
	raw, err := json.MarshalIndent(sidecar, "", "  ")
	if err != nil {
		return Info{}, err
	}
	if err := os.WriteFile(metaPath, raw, 0o644); err != nil {
		return Info{}, err
	}
	return Info{
		Key:          key,
		Size:         size,
		ContentType:  opts.ContentType,
		ETag:         etag,
		Metadata:     cloneMetadata(opts.Metadata),
		LastModified: now,
		URL:          f.localURL(key),
	}, nil
}

// Get opens the blob for reading alongside its metadata.
func (f *Filesystem) Get(_ context.Context, key string) (Info, io.ReadCloser, error) {
	dataPath, metaPath, err := f.pathFor(key)
	if err != nil {
		return Info{}, nil, err
	}
	file, err := os.Open(dataPath)
	if err != nil {
		return Info{}, nil, err
	}
	sidecar, err := readSidecar(metaPath)
	if err != nil {
		_ = file.Close()
		return Info{}, nil, err
	}
	return f.infoFrom(key, sidecar), file, nil
}

// Head returns metadata only.
func (f *Filesystem) Head(_ context.Context, key string) (Info, error) {
	_, metaPath, err := f.pathFor(key)
	if err != nil {
		return Info{}, err
	}
	sidecar, err := readSidecar(metaPath)
	if err != nil {
		return Info{}, err
	}
	return f.infoFrom(key, sidecar), nil
}

// Delete removes the blob and its sidecar.
func (f *Filesystem) Delete(_ context.Context, key string) (bool, error) {
	dataPath, metaPath, err := f.pathFor(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(dataPath); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err := os.Remove(dataPath); err != nil {
		return false, err
	}
	_ = os.Remove(metaPath)
	return true, nil
}

// List walks the root collecting sidecars whose key matches the prefix.
func (f *Filesystem) List(_ context.Context, prefix string) ([]Info, error) {
	var infos []Info
	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".meta") {
			return nil
		}
		sidecar, err := readSidecar(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(f.root, strings.TrimSuffix(path, ".meta"))
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(key, prefix) {
			infos = append(infos, f.infoFrom(key, sidecar))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// PresignURL returns a pseudo local URL; there is no auth in dev.
func (f *Filesystem) PresignURL(_ context.Context, key string, opts SignedURLOptions) (string, error) {
	if opts.Method != "" && !strings.EqualFold(opts.Method, "GET") {
		return "", ErrUnsupported
	}
	return f.localURL(key), nil
}

func (f *Filesystem) infoFrom(key string, sidecar metaSidecar) Info {
	return Info{
		Key:          key,
		Size:         sidecar.Size,
		ContentType:  sidecar.ContentType,
		ETag:         sidecar.ETag,
		Metadata:     cloneMetadata(sidecar.Metadata),
		LastModified: sidecar.CreatedAt,
		URL:          f.localURL(key),
	}
}

func (f *Filesystem) localURL(key string) string {
	return (&url.URL{Scheme: "http", Host: "local.blob", Path: "/" + key}).String()
}

func readSidecar(path string) (metaSidecar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return metaSidecar{}, err
	}
	var sidecar metaSidecar
	if err := json.Unmarshal(raw, &sidecar); err != nil {
		return metaSidecar{}, err
	}
	return sidecar, nil
}
