package refdata

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/tidemark/tidemark/pkg/config"
)

// AzureSource reads tables from an Azure Blob Storage container.
type AzureSource struct {
	client    *azblob.Client
	container string
	prefix    string
}

// NewAzureSource creates an Azure-backed Store. Credentials come from the
// default Azure chain (environment, workload identity, az login).
func NewAzureSource(cfg config.AzureConfig) (*AzureSource, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	client, err := azblob.NewClient(cfg.AccountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create azure blob client: %w", err)
	}
	return &AzureSource{client: client, container: cfg.Container, prefix: cfg.Prefix}, nil
}

func (s *AzureSource) ReadTable(ctx context.Context, name string) ([]byte, error) {
	blob := objectKey(s.prefix, name)
	resp, err := s.client.DownloadStream(ctx, s.container, blob, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, s.container, blob)
		}
		return nil, fmt.Errorf("azure download %s: %w", blob, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (s *AzureSource) PutTable(ctx context.Context, name string, data []byte) error {
	blob := objectKey(s.prefix, name)
	if _, err := s.client.UploadBuffer(ctx, s.container, blob, data, nil); err != nil {
		return fmt.Errorf("azure upload %s: %w", blob, err)
	}
	return nil
}
