//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/medstore/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

func startMinIO(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.PortEndpoint(ctx, "9000/tcp", "http")
	require.NoError(t, err)
	return endpoint
}

func TestIntegration_UploadExistsDelete(t *testing.T) {
	endpoint := startMinIO(t)
	ctx := context.Background()

	storage, err := NewS3ObjectStorage(&config.StorageConfig{
		Bucket:       "invoices",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Endpoint:     endpoint,
		UsePathStyle: true,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	require.NoError(t, storage.EnsureBucket(ctx))
	require.NoError(t, storage.EnsureBucket(ctx))

	key := "invoices/INV-20261017-0001.pdf"
	require.NoError(t, storage.Upload(ctx, key, []byte("%PDF-1.4"), "application/pdf"))

	exists, err := storage.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	url, _, err := storage.GenerateDownloadURL(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, endpoint)

	require.NoError(t, storage.DeleteObject(ctx, key))
	exists, err = storage.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}
