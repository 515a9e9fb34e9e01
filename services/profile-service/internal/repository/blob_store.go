package repository

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"seungpyo.lee/StudentPortal/services/profile-service/internal/domain"
)

// BlobStore keeps profile images in an Azure Blob Storage container.
type BlobStore struct {
	BlobClient    *azblob.Client
	containerName string
}

func NewBlobStore(blobClient *azblob.Client, containerName string) *BlobStore {
	return &BlobStore{BlobClient: blobClient, containerName: containerName}
}

func NewBlobStoreFromConnectionString(connectionString, containerName string) (*BlobStore, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return NewBlobStore(client, containerName), nil
}

func (r *BlobStore) Backend() string { return "azblob" }

// EnsureContainer creates the container if it does not exist yet.
// It reports whether the container was created.
func (r *BlobStore) EnsureContainer(ctx context.Context) (bool, error) {
	_, err := r.BlobClient.CreateContainer(ctx, r.containerName, &azblob.CreateContainerOptions{
		Access: to.Ptr(azblob.PublicAccessTypeBlob),
	})
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == string(bloberror.ContainerAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *BlobStore) blobClient(key string) *blob.Client {
	return r.BlobClient.ServiceClient().NewContainerClient(r.containerName).NewBlobClient(key)
}

func (r *BlobStore) Exists(ctx context.Context, key string) (bool, error) {
	if r.BlobClient == nil {
		return false, fmt.Errorf("Azure blob client is nil")
	}
	_, err := r.blobClient(key).GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *BlobStore) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	if r.BlobClient == nil {
		return nil, 0, fmt.Errorf("Azure blob client is nil")
	}
	resp, err := r.BlobClient.DownloadStream(ctx, r.containerName, key, nil)
	if err != nil {
		return nil, 0, err
	}
	var size int64 = -1
	if resp.ContentLength != nil {
		size = *resp.ContentLength
	}
	return resp.Body, size, nil
}

func (r *BlobStore) Put(ctx context.Context, key string, file io.Reader, _ int64, contentType string) error {
	if r.BlobClient == nil {
		return fmt.Errorf("Azure blob client is nil")
	}
	_, err := r.BlobClient.UploadStream(ctx, r.containerName, key, file, &azblob.UploadStreamOptions{
		BlockSize:   int64(1024) * 256, // 256KB
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType)},
	})
	return err
}

func (r *BlobStore) Delete(ctx context.Context, key string) error {
	if r.BlobClient == nil {
		return fmt.Errorf("Azure blob client is nil")
	}
	_, err := r.BlobClient.DeleteBlob(ctx, r.containerName, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return domain.ErrImageNotFound
		}
		return err
	}
	return nil
}
