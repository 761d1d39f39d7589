package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsScheme = "gs://"

// parseGCSPath splits gs://bucket/object into its parts.
func parseGCSPath(path string) (bucket, object string, ok bool) {
	if !strings.HasPrefix(path, gcsScheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(path, gcsScheme)
	bucket, object, found := strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}

// gcsObjectReader closes the storage client together with the object reader.
type gcsObjectReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *gcsObjectReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// openArtifact opens a local file or a gs://bucket/object path. Remote
// objects use Application Default Credentials.
func openArtifact(ctx context.Context, path string) (io.ReadCloser, error) {
	if strings.HasPrefix(path, gcsScheme) {
		bucket, object, ok := parseGCSPath(path)
		if !ok {
			return nil, fmt.Errorf("invalid GCS path %q (want gs://bucket/object)", path)
		}
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
		}
		r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		return &gcsObjectReader{Reader: r, client: client}, nil
	}
	return os.Open(path)
}

// readArtifact reads a whole artifact into memory.
func readArtifact(ctx context.Context, path string) ([]byte, error) {
	rc, err := openArtifact(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
