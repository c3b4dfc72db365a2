package artifact

import (
	"bytes"
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/adforge/pkg/errors"
)

// DefaultBucket is the GridFS bucket name used when none is given.
const DefaultBucket = "artifacts"

// GridFS stores artifacts in a MongoDB GridFS bucket. The artifact ID is the
// GridFS file ID; the content type lives in the file metadata.
type GridFS struct {
	client *mongo.Client
	bucket *gridfs.Bucket
	opts   storeOptions
}

var _ Store = (*GridFS)(nil)

type gridMeta struct {
	ContentType string `bson:"contentType"`
}

type gridFile struct {
	ID       string   `bson:"_id"`
	Name     string   `bson:"filename"`
	Length   int64    `bson:"length"`
	Metadata gridMeta `bson:"metadata"`
}

// ConnectGridFS connects to the MongoDB deployment at uri and opens the
// named bucket in database db.
func ConnectGridFS(ctx context.Context, uri, db, bucket string, opts ...Option) (*GridFS, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}
	s, err := NewGridFS(client.Database(db), bucket, opts...)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	s.client = client
	return s, nil
}

// NewGridFS opens a bucket on an existing database handle.
func NewGridFS(db *mongo.Database, bucket string, opts ...Option) (*GridFS, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	b, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucket))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open gridfs bucket %s", bucket)
	}
	return &GridFS{bucket: b, opts: buildOptions(opts)}, nil
}

// Put uploads data. GridFS uploads do not take a context; ctx is only
// checked before the upload starts.
func (s *GridFS) Put(ctx context.Context, name, contentType string, data []byte) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}
	ref := s.opts.ref(s.opts.newID(), name, contentType, len(data))
	upload := options.GridFSUpload().SetMetadata(gridMeta{ContentType: contentType})
	if err := s.bucket.UploadFromStreamWithID(ref.ID, name, bytes.NewReader(data), upload); err != nil {
		return Ref{}, errors.Wrap(errors.ErrCodeStorage, err, "upload artifact %s", ref.ID)
	}
	return ref, nil
}

func (s *GridFS) Get(ctx context.Context, id string) ([]byte, Ref, error) {
	if err := errors.ValidateArtifactID(id); err != nil {
		return nil, Ref{}, err
	}
	cur, err := s.bucket.FindContext(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, Ref{}, errors.Wrap(errors.ErrCodeStorage, err, "find artifact %s", id)
	}
	var files []gridFile
	if err := cur.All(ctx, &files); err != nil {
		return nil, Ref{}, errors.Wrap(errors.ErrCodeStorage, err, "decode artifact %s", id)
	}
	if len(files) == 0 {
		return nil, Ref{}, notFound(id)
	}

	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStream(id, &buf); err != nil {
		if stderrors.Is(err, gridfs.ErrFileNotFound) {
			return nil, Ref{}, notFound(id)
		}
		return nil, Ref{}, errors.Wrap(errors.ErrCodeStorage, err, "download artifact %s", id)
	}
	f := files[0]
	return buf.Bytes(), s.opts.ref(f.ID, f.Name, f.Metadata.ContentType, int(f.Length)), nil
}

func (s *GridFS) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateArtifactID(id); err != nil {
		return err
	}
	err := s.bucket.DeleteContext(ctx, id)
	if err != nil && !stderrors.Is(err, gridfs.ErrFileNotFound) {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete artifact %s", id)
	}
	return nil
}

// Close disconnects the client opened by [ConnectGridFS].
func (s *GridFS) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
