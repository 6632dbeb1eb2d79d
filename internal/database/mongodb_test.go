package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestConnectMongoWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	client := &mongo.Client{}
	got, err := ConnectMongoWithRetry(context.Background(), Retry{Attempts: 3, Backoff: time.Millisecond}, func(context.Context) (*mongo.Client, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection refused")
		}
		return client, nil
	})
	require.NoError(t, err)
	require.Same(t, client, got)
	require.Equal(t, 3, calls)
}

func TestConnectMongoWithRetry_GivesUp(t *testing.T) {
	calls := 0
	_, err := ConnectMongoWithRetry(context.Background(), Retry{Attempts: 2, Backoff: time.Millisecond}, func(context.Context) (*mongo.Client, error) {
		calls++
		return nil, errors.New("connection refused")
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "after 2 attempts")
	require.Equal(t, 2, calls)
}

func TestConnectMongoWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := ConnectMongoWithRetry(ctx, Retry{Attempts: 5, Backoff: time.Hour}, func(context.Context) (*mongo.Client, error) {
		calls++
		cancel()
		return nil, errors.New("connection refused")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
