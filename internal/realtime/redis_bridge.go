package realtime

import (
	"context"
	"encoding/json"
	"time"

	"nganya/internal/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultBridgeChannel = "nganya:dispatch"

// RedisBridge fans hub frames out to other instances over Redis pub/sub.
// Delivery is best effort: frames are dropped when the outbox is full or Redis
// is unreachable, and nothing is replayed.
type RedisBridge struct {
	client  *redis.Client
	channel string
	node    string
	outbox  chan BridgeMessage
}

func NewRedisBridge(client *redis.Client, channel string) *RedisBridge {
	if channel == "" {
		channel = DefaultBridgeChannel
	}
	return &RedisBridge{
		client:  client,
		channel: channel,
		node:    uuid.NewString(),
		outbox:  make(chan BridgeMessage, 256),
	}
}

// ConnectRedis parses a redis:// URL and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (b *RedisBridge) Node() string { return b.node }

// Forward implements Forwarder without blocking the publisher.
func (b *RedisBridge) Forward(msg BridgeMessage) {
	msg.Node = b.node
	select {
	case b.outbox <- msg:
	default:
		utils.LogEvent("", "bridge", "drop", "reason=outbox_full")
	}
}

// Run publishes queued frames and delivers frames from other nodes into hub
// until ctx is done.
func (b *RedisBridge) Run(ctx context.Context, hub *Hub) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	incoming := sub.Channel()
	utils.LogEvent("", "bridge", "subscribe", "channel="+b.channel+" node="+b.node)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-b.outbox:
			payload, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
				utils.LogEvent("", "bridge", "publish", "err="+err.Error())
			}
		case m, ok := <-incoming:
			if !ok {
				return nil
			}
			b.receive(hub, m.Payload)
		}
	}
}

func (b *RedisBridge) receive(hub *Hub, payload string) int {
	msg, ok := decodeBridgeMessage(payload)
	if !ok || msg.Node == b.node {
		return 0
	}
	return hub.DeliverRemote(msg)
}

func decodeBridgeMessage(payload string) (BridgeMessage, bool) {
	var msg BridgeMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		utils.LogEvent("", "bridge", "decode", "err="+err.Error())
		return BridgeMessage{}, false
	}
	if len(msg.Frame) == 0 {
		return BridgeMessage{}, false
	}
	return msg, true
}
