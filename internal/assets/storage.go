package assets

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Lumos-Labs-HQ/autoseed/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LocalStorage writes objects below a directory.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assets dir: %w", err)
	}
	return &LocalStorage{dir: abs}, nil
}

func (s *LocalStorage) Put(ctx context.Context, name, contentType string, data []byte) error {
	if strings.Contains(name, "..") {
		return fmt.Errorf("invalid object name %q", name)
	}
	return utils.AtomicWrite(filepath.Join(s.dir, filepath.FromSlash(name)), data)
}

func (s *LocalStorage) BaseURL() string {
	return "file://" + filepath.ToSlash(s.dir)
}

func (s *LocalStorage) Close() error { return nil }

// GridFSStorage stores objects in a MongoDB GridFS bucket.
type GridFSStorage struct {
	bucket *gridfs.Bucket
	name   string
}

func NewGridFSStorage(db *mongo.Database, bucketName string) (*GridFSStorage, error) {
	if bucketName == "" {
		bucketName = "assets"
	}
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to open GridFS bucket %s: %w", bucketName, err)
	}
	return &GridFSStorage{bucket: bucket, name: bucketName}, nil
}

// Put skips the upload when an object with the same name already exists.
func (s *GridFSStorage) Put(ctx context.Context, name, contentType string, data []byte) error {
	cursor, err := s.bucket.Find(bson.D{{Key: "filename", Value: name}}, options.GridFSFind().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", name, err)
	}
	exists := cursor.Next(ctx)
	_ = cursor.Close(ctx)
	if exists {
		return nil
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if _, err := s.bucket.UploadFromStream(name, bytes.NewReader(data), opts); err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}

func (s *GridFSStorage) BaseURL() string {
	return "gridfs://" + s.name
}

// Close is a no-op: the bucket shares the store's client.
func (s *GridFSStorage) Close() error { return nil }
