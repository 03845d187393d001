package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrConnection marks errors caused by a lost or refused connection. The
// worker reconnects after them instead of retrying immediately.
var ErrConnection = errors.New("stream connection error")

// ReadArgs selects new messages for one consumer of a group.
type ReadArgs struct {
	Stream   string
	Group    string
	Consumer string
	Count    int64
	Block    time.Duration
}

// StreamClient is the subset of Redis Streams the worker needs.
type StreamClient interface {
	Ping(ctx context.Context) error
	EnsureGroup(ctx context.Context, stream, group string) error
	Read(ctx context.Context, args ReadArgs) ([]Message, error)
	Publish(ctx context.Context, stream string, values map[string]interface{}) (string, error)
	Ack(ctx context.Context, stream, group string, ids ...string) error
	Close() error
}

// RedisStream implements StreamClient with go-redis.
type RedisStream struct {
	client *redis.Client
}

// NewRedisStream creates a client for a redis:// or rediss:// URL. No
// connection is made until the first command.
func NewRedisStream(url string) (*RedisStream, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisStream{client: redis.NewClient(opts)}, nil
}

// Ping checks the connection.
func (r *RedisStream) Ping(ctx context.Context) error {
	return classify(r.client.Ping(ctx).Err())
}

// EnsureGroup creates the consumer group, and the stream with it, reading
// from the beginning of the stream. An existing group is not an error.
func (r *RedisStream) EnsureGroup(ctx context.Context, stream, group string) error {
	err := r.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return classify(err)
}

// Read blocks up to args.Block for messages never delivered to the group.
// A timeout without messages returns no messages and no error.
func (r *RedisStream) Read(ctx context.Context, args ReadArgs) ([]Message, error) {
	streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    args.Group,
		Consumer: args.Consumer,
		Streams:  []string{args.Stream, ">"},
		Count:    args.Count,
		Block:    args.Block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}

	var out []Message
	for _, s := range streams {
		for _, m := range s.Messages {
			out = append(out, Message{ID: m.ID, Values: m.Values})
		}
	}
	return out, nil
}

// Publish appends an entry to stream and returns its id.
func (r *RedisStream) Publish(ctx context.Context, stream string, values map[string]interface{}) (string, error) {
	id, err := r.client.XAdd(ctx, &redis.XAddArgs{Stream: stream, Values: values}).Result()
	return id, classify(err)
}

// Ack acknowledges messages for the group.
func (r *RedisStream) Ack(ctx context.Context, stream, group string, ids ...string) error {
	return classify(r.client.XAck(ctx, stream, group, ids...).Err())
}

// Close releases the connection pool.
func (r *RedisStream) Close() error {
	return r.client.Close()
}

// classify wraps connection failures with ErrConnection.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, redis.ErrClosed) || errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.As(err, &netErr) ||
		strings.Contains(err.Error(), "connection refused") {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return err
}
