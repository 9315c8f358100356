package gstorage

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

var ErrObjectNotExist = storage.ErrObjectNotExist

type GStorage struct {
	storageClient *storage.Client
}

func NewGStorage(credentialsFilePath string) (*GStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFilePath != "" {
		client, err = storage.NewClient(context.Background(), option.WithCredentialsFile(credentialsFilePath))
	} else {
		client, err = storage.NewClient(context.Background())
	}

	if err != nil {
		return nil, errors.Wrap(err, "NewGStorage")
	}

	return &GStorage{storageClient: client}, nil
}

// Backup uploads the file at 'filePath' to bucket/prefix, keyed by its
// base name. Used by the periodic db backup job.
func (gs *GStorage) Backup(bucket, prefix, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return errors.Wrap(err, "os.Open")
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*50)
	defer cancel()

	object := path.Join(prefix, filepath.Base(filePath))
	wc := gs.storageClient.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err = io.Copy(wc, f); err != nil {
		return errors.Wrap(err, "io.Copy")
	}
	if err := wc.Close(); err != nil {
		return errors.Wrap(err, "Writer.Close")
	}

	return nil
}

// Restore downloads bucket/prefix/object into 'destFilePath'. Returns
// ErrObjectNotExist when no backup has been made yet, so boot can
// carry on with a fresh db.
func (gs *GStorage) Restore(bucket, prefix, object, destFilePath string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*50)
	defer cancel()

	rc, err := gs.storageClient.Bucket(bucket).Object(path.Join(prefix, object)).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return err
	}
	if err != nil {
		return errors.Wrapf(err, "Object(%q).NewReader", object)
	}
	defer rc.Close()

	f, err := os.Create(destFilePath)
	if err != nil {
		return errors.Wrap(err, "os.Create")
	}

	if _, err := io.Copy(f, rc); err != nil {
		return errors.Wrap(err, "io.Copy")
	}

	if err = f.Close(); err != nil {
		return errors.Wrap(err, "f.Close")
	}

	return nil
}
