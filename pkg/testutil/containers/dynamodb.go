//go:build integration

package containers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DynamoContainer wraps a DynamoDB Local instance.
type DynamoContainer struct {
	Container testcontainers.Container
	Endpoint  string
}

// NewDynamoContainer starts amazon/dynamodb-local with an in-memory database.
func NewDynamoContainer(t *testing.T) *DynamoContainer {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "amazon/dynamodb-local:2.5.4",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
			WaitingFor:   wait.ForListeningPort("8000/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start dynamodb-local container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get dynamodb-local host: %v", err)
	}
	port, err := container.MappedPort(ctx, "8000/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get dynamodb-local port: %v", err)
	}

	return &DynamoContainer{
		Container: container,
		Endpoint:  fmt.Sprintf("http://%s:%s", host, port.Port()),
	}
}
