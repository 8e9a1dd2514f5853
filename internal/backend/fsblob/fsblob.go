// Package fsblob stores receipt blobs on the local filesystem and signs
// download URLs with an HMAC so the HTTP layer can serve them without a
// session.
package fsblob

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/backend"
)

var (
	ErrInvalidPath      = errors.New("invalid blob path")
	ErrBadSignature     = errors.New("bad signature")
	ErrSignatureExpired = errors.New("signature expired")
)

// Store writes blobs under Root. BaseURL prefixes signed URLs, e.g.
// "http://localhost:8080/files".
type Store struct {
	root    string
	baseURL string
	secret  []byte
	now     func() time.Time
}

func New(root, baseURL string, secret []byte) (*Store, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		now:     time.Now,
	}, nil
}

func (s *Store) Upload(_ context.Context, path string, data []byte) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", path, err)
	}
	return nil
}

func (s *Store) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("blob %s: %w", path, err)
	}
	expires := s.now().Add(ttl).Unix()
	sig := s.sign(path, expires)
	return fmt.Sprintf("%s/%s?exp=%d&sig=%s", s.baseURL, path, expires, sig), nil
}

func (s *Store) Delete(_ context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("delete blob %s: %w", path, err)
	}
	return nil
}

// Open returns the blob contents for serving. The caller is expected to
// have verified the signature first.
func (s *Store) Open(path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Verify checks a signed URL's exp and sig query values for path.
func (s *Store) Verify(path, expStr, sig string) error {
	expires, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	if !hmac.Equal([]byte(s.sign(path, expires)), []byte(sig)) {
		return ErrBadSignature
	}
	if s.now().Unix() > expires {
		return ErrSignatureExpired
	}
	return nil
}

func (s *Store) sign(path string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%d", path, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// resolve maps a blob path to a filesystem path, rejecting anything that
// would escape the root.
func (s *Store) resolve(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" || strings.Contains(path, "..") || strings.Contains(path, "\\") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(path)), nil
}

var _ backend.BlobStore = (*Store)(nil)
