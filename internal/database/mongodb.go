package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docschema/docschema/pkg/logger"
)

// Collection names used by the repositories.
const (
	TemplatesCollection = "document_templates"
	DocumentsCollection = "documents"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().ApplyURI(uri).SetAppName("docschema")
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// Retry controls ConnectMongoWithRetry.
type Retry struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetry tolerates a database that starts slower than the API.
var DefaultRetry = Retry{Attempts: 5, Backoff: time.Second}

// ConnectMongoWithRetry calls connect up to r.Attempts times, doubling the
// wait between attempts. connect is usually ConnectMongo bound to a URI.
func ConnectMongoWithRetry(ctx context.Context, r Retry, connect func(context.Context) (*mongo.Client, error)) (*mongo.Client, error) {
	if r.Attempts < 1 {
		r.Attempts = 1
	}
	backoff := r.Backoff
	var lastErr error
	for attempt := 1; attempt <= r.Attempts; attempt++ {
		client, err := connect(ctx)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, r.Attempts, err)
		if attempt == r.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("could not connect to MongoDB after %d attempts: %w", r.Attempts, lastErr)
}
