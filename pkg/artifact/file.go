package artifact

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/matzehuels/adforge/pkg/errors"
)

// FileStore keeps artifacts in a directory. Each artifact is stored as
// <id>.bin next to an <id>.json sidecar holding its [Ref].
type FileStore struct {
	dir  string
	opts storeOptions
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create artifact dir")
	}
	return &FileStore{dir: dir, opts: buildOptions(opts)}, nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Put(ctx context.Context, name, contentType string, data []byte) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}
	ref := s.opts.ref(s.opts.newID(), name, contentType, len(data))
	if err := errors.ValidateArtifactID(ref.ID); err != nil {
		return Ref{}, err
	}
	meta, err := json.Marshal(ref)
	if err != nil {
		return Ref{}, err
	}
	if err := os.WriteFile(s.dataPath(ref.ID), data, 0644); err != nil {
		return Ref{}, errors.Wrap(errors.ErrCodeStorage, err, "write artifact %s", ref.ID)
	}
	if err := os.WriteFile(s.metaPath(ref.ID), meta, 0644); err != nil {
		_ = os.Remove(s.dataPath(ref.ID))
		return Ref{}, errors.Wrap(errors.ErrCodeStorage, err, "write artifact metadata %s", ref.ID)
	}
	return ref, nil
}

func (s *FileStore) Get(ctx context.Context, id string) ([]byte, Ref, error) {
	if err := errors.ValidateArtifactID(id); err != nil {
		return nil, Ref{}, err
	}
	meta, err := os.ReadFile(s.metaPath(id))
	if os.IsNotExist(err) {
		return nil, Ref{}, notFound(id)
	}
	if err != nil {
		return nil, Ref{}, errors.Wrap(errors.ErrCodeStorage, err, "read artifact metadata %s", id)
	}
	var ref Ref
	if err := json.Unmarshal(meta, &ref); err != nil {
		return nil, Ref{}, errors.Wrap(errors.ErrCodeStorage, err, "decode artifact metadata %s", id)
	}
	data, err := os.ReadFile(s.dataPath(id))
	if os.IsNotExist(err) {
		return nil, Ref{}, notFound(id)
	}
	if err != nil {
		return nil, Ref{}, errors.Wrap(errors.ErrCodeStorage, err, "read artifact %s", id)
	}
	return data, ref, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := errors.ValidateArtifactID(id); err != nil {
		return err
	}
	for _, p := range []string{s.dataPath(id), s.metaPath(id)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeStorage, err, "delete artifact %s", id)
		}
	}
	return nil
}

func (s *FileStore) dataPath(id string) string { return filepath.Join(s.dir, id+".bin") }
func (s *FileStore) metaPath(id string) string { return filepath.Join(s.dir, id+".json") }
