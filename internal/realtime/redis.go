package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/metrics"
)

const channelPrefix = "notifications:"

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

func NewRedis(opts RedisOptions) *redis.Client {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	log.Info().Str("addr", opts.Addr).Msg("redis client created")
	return rdb
}

func Channel(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

// RedisNotifier publishes events on notifications:<userID> so every API
// instance can relay them to its own sockets.
type RedisNotifier struct {
	RDB *redis.Client
	Hub *Hub
}

func NewRedisNotifier(rdb *redis.Client, hub *Hub) *RedisNotifier {
	return &RedisNotifier{RDB: rdb, Hub: hub}
}

func (n *RedisNotifier) Notify(ctx context.Context, userID uuid.UUID, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = n.RDB.Publish(ctx, Channel(userID), payload).Err()
	metrics.RecordNotification("redis", err)
	return err
}

// Relay forwards published notifications to the local hub until ctx is done.
func (n *RedisNotifier) Relay(ctx context.Context) error {
	sub := n.RDB.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			n.deliver(msg)
		}
	}
}

func (n *RedisNotifier) deliver(msg *redis.Message) {
	raw := strings.TrimPrefix(msg.Channel, channelPrefix)
	userID, err := uuid.Parse(raw)
	if err != nil {
		log.Warn().Str("channel", msg.Channel).Msg("realtime: ignoring notification on malformed channel")
		return
	}
	n.Hub.SendRaw(userID, []byte(msg.Payload))
}
