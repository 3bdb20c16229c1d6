package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raysh454/tempusfetch/internal/persist"
)

// ErrBlobNotFound is returned when a capture references a missing blob.
var ErrBlobNotFound = errors.New("blob not found")

// fsStore keeps capture bodies content-addressed by SHA-256 under
// blobsDir/{first two hex chars}/{hash}.
type fsStore struct {
	blobsDir string
}

func newFSStore(blobsDir string) (*fsStore, error) {
	if err := os.MkdirAll(blobsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create blobs directory: %w", err)
	}
	return &fsStore{blobsDir: blobsDir}, nil
}

// put stores data and returns its hash. Existing blobs are not rewritten.
func (fs *fsStore) put(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	id := hex.EncodeToString(sum[:])

	path := fs.blobPath(id)
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}
	if err := persist.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return id, nil
}

// get reads a blob and checks it still hashes to id.
func (fs *fsStore) get(id string) ([]byte, error) {
	data, err := os.ReadFile(fs.blobPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, id)
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != id {
		return nil, fmt.Errorf("blob integrity check failed: expected %s, got %s", id, got)
	}
	return data, nil
}

func (fs *fsStore) blobPath(id string) string {
	// a sha256 hex id is 64 chars; anything shorter cannot name a real blob
	if len(id) < 2 {
		return filepath.Join(fs.blobsDir, "__invalid__", id)
	}
	return filepath.Join(fs.blobsDir, id[:2], id)
}
