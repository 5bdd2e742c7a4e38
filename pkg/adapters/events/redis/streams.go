package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/chaincfg/pkg/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	streamPrefix = "chaincfg:events:"
	streamMaxLen = 1000
	readCount    = 10
	readBlock    = time.Second
	retryDelay   = time.Second

	// streamStart reads a stream from its first entry
	streamStart = "0-0"
)

// StreamsEventBus implements ports.EventBus using Redis Streams.
// Every subscription reads the stream on its own cursor, so each event
// reaches every subscriber in every process sharing the Redis instance.
type StreamsEventBus struct {
	client *redis.Client
	logger *zap.Logger
}

// NewStreamsEventBus creates a new Redis Streams event bus
func NewStreamsEventBus(client *redis.Client, logger *zap.Logger) *StreamsEventBus {
	return &StreamsEventBus{
		client: client,
		logger: logger,
	}
}

// Publish appends an event to the topic's stream
func (e *StreamsEventBus) Publish(ctx context.Context, topic string, event ports.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := streamKey(topic)
	id, err := e.client.XAdd(ctx, &redis.XAddArgs{
		Stream: key,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}

	e.logger.Debug("event published",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("stream", key),
		zap.String("entry_id", id))

	return nil
}

// Subscribe delivers events appended after it returns, until ctx is
// cancelled. Entries already in the stream are skipped.
func (e *StreamsEventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	key := streamKey(topic)

	cursor, err := e.tail(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read stream position: %w", err)
	}

	e.logger.Info("subscribed to event stream",
		zap.String("stream", key),
		zap.String("cursor", cursor))

	go e.follow(ctx, key, cursor, handler)

	return nil
}

// Close is a no-op; the Redis client is closed by its owner
func (e *StreamsEventBus) Close() error {
	return nil
}

// tail returns the ID of the newest entry, or streamStart for an empty
// or missing stream
func (e *StreamsEventBus) tail(ctx context.Context, key string) (string, error) {
	last, err := e.client.XRevRangeN(ctx, key, "+", "-", 1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	if len(last) == 0 {
		return streamStart, nil
	}
	return last[0].ID, nil
}

// follow reads entries after cursor and hands them to handler in order
func (e *StreamsEventBus) follow(ctx context.Context, key, cursor string, handler ports.EventHandler) {
	for ctx.Err() == nil {
		streams, err := e.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{key, cursor},
			Count:   readCount,
			Block:   readBlock,
		}).Result()

		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			e.logger.Error("failed to read from stream",
				zap.String("stream", key),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				cursor = msg.ID
				e.deliver(ctx, key, msg, handler)
			}
		}
	}
}

// deliver decodes one entry and runs handler on it. A bad entry or a
// failing handler is logged and skipped.
func (e *StreamsEventBus) deliver(ctx context.Context, key string, msg redis.XMessage, handler ports.EventHandler) {
	event, err := decodeEntry(msg)
	if err != nil {
		e.logger.Error("skipping stream entry",
			zap.String("stream", key),
			zap.String("entry_id", msg.ID),
			zap.Error(err))
		return
	}

	if err := handler(ctx, event); err != nil {
		e.logger.Warn("event handler failed",
			zap.String("stream", key),
			zap.String("entry_id", msg.ID),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

func decodeEntry(msg redis.XMessage) (ports.Event, error) {
	var event ports.Event

	data, ok := msg.Values["data"].(string)
	if !ok {
		return event, errors.New("entry has no data field")
	}
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}

func streamKey(topic string) string {
	return streamPrefix + topic
}
