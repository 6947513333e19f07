package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/danielpatrickdp/emotion-geometry/internal/prompt"
	"github.com/danielpatrickdp/emotion-geometry/internal/protocol"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
	"github.com/danielpatrickdp/emotion-geometry/internal/trend"
)

// #region config
// RedisConfig configures the Redis store.
type RedisConfig struct {
	Prefix string        // key prefix, default "affect"
	TTL    time.Duration // expiry refreshed on every write, 0 = no expiry
}
// #endregion config

// #region store-struct
// RedisStore keeps sessions in Redis. Keys are namespaced as
// "{prefix}:session:{id}" for the session record and
// "{prefix}:session:{id}:history" / ":messages" for the capped lists.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// sessionRecord is the JSON value stored under the session key.
type sessionRecord struct {
	PersonalContext textsignal.PersonalContext `json:"personalContext"`
	Mode            protocol.Mode              `json:"mode"`
	Settings        prompt.TherapySettings     `json:"settings"`
	Turns           int                        `json:"turns"`
	CreatedAt       time.Time                  `json:"createdAt"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, cfg RedisConfig) *RedisStore {
	if cfg.Prefix == "" {
		cfg.Prefix = "affect"
	}
	return &RedisStore{client: client, prefix: cfg.Prefix, ttl: cfg.TTL, now: time.Now}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr string, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisStore(client, cfg), nil
}

// Close closes the client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, id)
}

func (r *RedisStore) listKey(id, name string) string {
	return fmt.Sprintf("%s:session:%s:%s", r.prefix, id, name)
}
// #endregion store-struct

// #region create-load
// CreateSession stores an empty session in normal mode.
func (r *RedisStore) CreateSession(ctx context.Context, settings prompt.TherapySettings) (Session, error) {
	now := r.now().UTC()
	rec := sessionRecord{
		Mode:      protocol.ModeNormal,
		Settings:  settings.Normalize(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	id := uuid.New().String()
	if err := r.writeRecord(ctx, id, rec); err != nil {
		return Session{}, err
	}
	return rec.session(id, []trend.Entry{}, []textsignal.Message{}), nil
}

// LoadSession reads the session record and both lists.
func (r *RedisStore) LoadSession(ctx context.Context, id string) (Session, error) {
	rec, err := r.readRecord(ctx, id)
	if err != nil {
		return Session{}, err
	}

	rawHistory, err := r.client.LRange(ctx, r.listKey(id, "history"), 0, -1).Result()
	if err != nil {
		return Session{}, fmt.Errorf("lrange history: %w", err)
	}
	history := make([]trend.Entry, 0, len(rawHistory))
	for _, raw := range rawHistory {
		var e trend.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return Session{}, fmt.Errorf("unmarshal history: %w", err)
		}
		history = append(history, e)
	}

	rawMsgs, err := r.client.LRange(ctx, r.listKey(id, "messages"), 0, -1).Result()
	if err != nil {
		return Session{}, fmt.Errorf("lrange messages: %w", err)
	}
	msgs := make([]textsignal.Message, 0, len(rawMsgs))
	for _, raw := range rawMsgs {
		var m textsignal.Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return Session{}, fmt.Errorf("unmarshal message: %w", err)
		}
		msgs = append(msgs, m)
	}

	return rec.session(id, history, msgs), nil
}

func (rec sessionRecord) session(id string, history []trend.Entry, msgs []textsignal.Message) Session {
	return Session{
		ID:              id,
		PersonalContext: rec.PersonalContext,
		History:         history,
		Messages:        msgs,
		Mode:            protocol.ParseMode(string(rec.Mode)),
		Settings:        rec.Settings,
		Turns:           rec.Turns,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}
// #endregion create-load

// #region updates
// SaveContext replaces the stored personal context.
func (r *RedisStore) SaveContext(ctx context.Context, id string, pc textsignal.PersonalContext) error {
	return r.update(ctx, id, func(rec *sessionRecord) { rec.PersonalContext = pc })
}

// SetMode records the crisis lifecycle mode.
func (r *RedisStore) SetMode(ctx context.Context, id string, mode protocol.Mode) error {
	return r.update(ctx, id, func(rec *sessionRecord) { rec.Mode = protocol.ParseMode(string(mode)) })
}

// AppendHistory pushes entries and trims to the last MaxHistory.
func (r *RedisStore) AppendHistory(ctx context.Context, id string, entries ...trend.Entry) error {
	values := make([]any, len(entries))
	for i, e := range entries {
		raw, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		values[i] = string(raw)
	}
	return r.pushCapped(ctx, id, "history", MaxHistory, values, func(*sessionRecord) {})
}

// AppendMessages pushes messages, trims to the last MaxMessages and counts
// the user messages into Turns.
func (r *RedisStore) AppendMessages(ctx context.Context, id string, msgs ...textsignal.Message) error {
	values := make([]any, len(msgs))
	for i, m := range msgs {
		raw, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		values[i] = string(raw)
	}
	turns := countUserMessages(msgs)
	return r.pushCapped(ctx, id, "messages", MaxMessages, values, func(rec *sessionRecord) { rec.Turns += turns })
}

func (r *RedisStore) pushCapped(ctx context.Context, id, name string, limit int, values []any, mutate func(*sessionRecord)) error {
	if err := r.update(ctx, id, mutate); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	key := r.listKey(id, name)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-limit), -1)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push %s: %w", name, err)
	}
	return nil
}

func (r *RedisStore) update(ctx context.Context, id string, mutate func(*sessionRecord)) error {
	rec, err := r.readRecord(ctx, id)
	if err != nil {
		return err
	}
	mutate(&rec)
	rec.UpdatedAt = r.now().UTC()
	return r.writeRecord(ctx, id, rec)
}

func (r *RedisStore) readRecord(ctx context.Context, id string) (sessionRecord, error) {
	raw, err := r.client.Get(ctx, r.sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return sessionRecord{}, ErrSessionNotFound
	}
	if err != nil {
		return sessionRecord{}, fmt.Errorf("get session: %w", err)
	}
	var rec sessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return sessionRecord{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return rec, nil
}

func (r *RedisStore) writeRecord(ctx context.Context, id string, rec sessionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, r.sessionKey(id), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}
// #endregion updates

var _ SessionStore = (*RedisStore)(nil)
