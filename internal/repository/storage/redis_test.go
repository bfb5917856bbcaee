package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// When: connecting to a port nothing listens on
	client, err := New(ctx, "127.0.0.1:1")

	// Then: the ping fails and no client is returned
	require.Error(t, err)
	require.Nil(t, client)
}
