package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	platformerrors "hypernasality-server-go/internal/platform/errors"
)

// ArtifactStore persists raw uploaded audio under a single directory so a
// prediction can be audited or reprocessed later. Every artifact gets a
// fresh UUID prefix, so concurrent requests never collide.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore ensures the storage directory exists.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage,
			"artifact store", "create audio directory", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

// Save writes data under a unique name derived from the original filename
// and returns the stored path.
func (s *ArtifactStore) Save(filename string, data []byte) (string, error) {
	name := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", platformerrors.Wrap(platformerrors.KindStorage,
			"artifact save", "write audio artifact", err)
	}
	return path, nil
}

// Delete removes a stored artifact. Used for cleanup when a request fails
// after its audio was already written.
func (s *ArtifactStore) Delete(path string) error {
	if filepath.Dir(path) != filepath.Clean(s.dir) {
		return platformerrors.New(platformerrors.KindStorage,
			"artifact delete", fmt.Sprintf("path %q is outside the audio directory", path))
	}
	if err := os.Remove(path); err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"artifact delete", "remove audio artifact", err)
	}
	return nil
}

// sanitizeFilename strips path separators so client-supplied names cannot
// escape the storage directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "audio"
	}
	return name
}
