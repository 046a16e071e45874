package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// ModelStore fetches model artifacts (weights, metadata) into local files
// before the inference session is created.
type ModelStore interface {
	EnsureModel(ctx context.Context, blobName, destPath string) error
}

type azureModelStore struct {
	client    *azblob.Client
	container string
}

// NewAzureModelStore creates a blob-backed model store so deployments do
// not need the ONNX weights baked into the image.
func NewAzureModelStore(accountName, accountKey, container string) (ModelStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &azureModelStore{client: client, container: container}, nil
}

// EnsureModel downloads blobName into destPath unless the file already
// exists. The downloaded file is immutable for the process lifetime.
func (s *azureModelStore) EnsureModel(ctx context.Context, blobName, destPath string) error {
	if _, err := os.Stat(destPath); err == nil {
		return nil
	}

	downloadResponse, err := s.client.DownloadStream(ctx, s.container, blobName, nil)
	if err != nil {
		return fmt.Errorf("download of %q failed: %w", blobName, err)
	}
	retryReader := downloadResponse.Body
	defer retryReader.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	// Write to a temp file first so a partial download never masquerades
	// as a complete model.
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, retryReader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %q: %w", destPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", destPath, err)
	}

	return os.Rename(tmp.Name(), destPath)
}
