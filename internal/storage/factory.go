package storage

import (
	"fmt"

	"github.com/gridsight/gridsight/internal/config"
)

// NewStorage creates a DumpStorage instance based on the configuration.
// Parameters:
//   - cfg: storage configuration including backend type and, for S3,
//     endpoint, credentials, and bucket.
// Returns:
//   - DumpStorage: initialized storage implementation.
//   - error: non-nil if the backend type is unknown or the client
//     cannot be created.
func NewStorage(cfg *config.StorageConfig) (DumpStorage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(), nil
	case "s3":
		return NewS3Storage(&S3Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
