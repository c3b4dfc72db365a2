// Package artifact stores rendered export files.
//
// A [Store] assigns every artifact an opaque ID and returns a [Ref] that the
// export layer embeds in its results. Three backends are provided:
//
//   - [Memory]: process-local, used by tests and one-shot CLI runs
//   - [FileStore]: one file per artifact plus a JSON sidecar
//   - [GridFS]: MongoDB GridFS, used by the HTTP server
package artifact

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/adforge/pkg/errors"
)

// DefaultURLPrefix is the path under which the HTTP server serves artifacts.
const DefaultURLPrefix = "/v1/artifacts"

// Ref describes a stored artifact.
type Ref struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// Store persists artifacts.
type Store interface {
	// Put stores data under a new ID.
	Put(ctx context.Context, name, contentType string, data []byte) (Ref, error)

	// Get returns the artifact's bytes and metadata. Missing IDs fail with
	// ARTIFACT_NOT_FOUND.
	Get(ctx context.Context, id string) ([]byte, Ref, error)

	// Delete removes the artifact. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error
}

// Option configures a store.
type Option func(*storeOptions)

type storeOptions struct {
	urlPrefix string
	newID     func() string
}

// WithURLPrefix sets the prefix used to build Ref.URL. An empty prefix
// leaves URLs blank.
func WithURLPrefix(prefix string) Option {
	return func(o *storeOptions) { o.urlPrefix = strings.TrimRight(prefix, "/") }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(f func() string) Option {
	return func(o *storeOptions) { o.newID = f }
}

func buildOptions(opts []Option) storeOptions {
	o := storeOptions{urlPrefix: DefaultURLPrefix, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o storeOptions) ref(id, name, contentType string, size int) Ref {
	r := Ref{ID: id, Name: name, ContentType: contentType, Size: size}
	if o.urlPrefix != "" {
		r.URL = o.urlPrefix + "/" + id
	}
	return r
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeArtifactNotFound, "artifact %q not found", id)
}
