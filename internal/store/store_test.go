package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/prompt"
	"github.com/danielpatrickdp/emotion-geometry/internal/protocol"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
	"github.com/danielpatrickdp/emotion-geometry/internal/trend"
)

// #region helpers
func tempSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func tempRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), RedisConfig{Prefix: "test"})
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func entry(i int) trend.Entry {
	ev := geometry.EmotionVector{Joy: float64(i % 10), Fear: 2}
	return trend.NewEntry(time.Date(2026, 1, 1, i, 0, 0, 0, time.UTC), ev, geometry.Transform(ev), "Joy")
}

// forEachStore runs fn against every SessionStore implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s SessionStore)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, tempSQLite(t)) })
	t.Run("redis", func(t *testing.T) {
		s, _ := tempRedis(t)
		fn(t, s)
	})
}
// #endregion helpers

// #region contract-tests
func TestCreateAndLoad(t *testing.T) {
	forEachStore(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()
		sess, err := s.CreateSession(ctx, prompt.TherapySettings{EmpathyLevel: prompt.EmpathyClinical})
		require.NoError(t, err)
		require.NotEmpty(t, sess.ID)
		assert.Equal(t, protocol.ModeNormal, sess.Mode)

		got, err := s.LoadSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)
		assert.Equal(t, protocol.ModeNormal, got.Mode)
		assert.Equal(t, prompt.EmpathyClinical, got.Settings.EmpathyLevel)
		assert.Equal(t, prompt.ToneWarm, got.Settings.ToneStyle, "unset settings normalise to defaults")
		assert.Empty(t, got.History)
		assert.Empty(t, got.Messages)
		assert.False(t, got.CreatedAt.IsZero())
	})
}

func TestUnknownSession(t *testing.T) {
	forEachStore(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()
		_, err := s.LoadSession(ctx, "missing")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.ErrorIs(t, s.SetMode(ctx, "missing", protocol.ModeCrisis), ErrSessionNotFound)
		assert.ErrorIs(t, s.SaveContext(ctx, "missing", textsignal.PersonalContext{}), ErrSessionNotFound)
		assert.ErrorIs(t, s.AppendHistory(ctx, "missing", entry(1)), ErrSessionNotFound)
		assert.ErrorIs(t, s.AppendMessages(ctx, "missing", textsignal.Message{Role: "user", Content: "hi"}), ErrSessionNotFound)
	})
}

func TestSaveContextAndMode(t *testing.T) {
	forEachStore(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()
		sess, err := s.CreateSession(ctx, prompt.DefaultTherapySettings())
		require.NoError(t, err)

		pc := textsignal.PersonalContext{Name: "Alex", Job: "teacher", Interests: []string{"hiking"}, HasPersonalInfo: true}
		require.NoError(t, s.SaveContext(ctx, sess.ID, pc))
		require.NoError(t, s.SetMode(ctx, sess.ID, protocol.ModeCrisis))

		got, err := s.LoadSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alex", got.PersonalContext.Name)
		assert.Equal(t, "teacher", got.PersonalContext.Job)
		assert.Equal(t, []string{"hiking"}, got.PersonalContext.Interests)
		assert.True(t, got.PersonalContext.HasPersonalInfo)
		assert.Equal(t, protocol.ModeCrisis, got.Mode)
		assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
	})
}

func TestAppendHistoryCapped(t *testing.T) {
	forEachStore(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()
		sess, err := s.CreateSession(ctx, prompt.DefaultTherapySettings())
		require.NoError(t, err)

		for i := 0; i < MaxHistory+3; i++ {
			require.NoError(t, s.AppendHistory(ctx, sess.ID, entry(i)))
		}

		got, err := s.LoadSession(ctx, sess.ID)
		require.NoError(t, err)
		require.Len(t, got.History, MaxHistory)
		assert.True(t, got.History[0].Timestamp.Equal(entry(3).Timestamp), "oldest entries dropped first")
		assert.True(t, got.History[MaxHistory-1].Timestamp.Equal(entry(MaxHistory+2).Timestamp))
		assert.Equal(t, entry(5).Emotions, got.History[2].Emotions)
	})
}

func TestAppendMessagesCapped(t *testing.T) {
	forEachStore(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()
		sess, err := s.CreateSession(ctx, prompt.DefaultTherapySettings())
		require.NoError(t, err)

		var batch []textsignal.Message
		for i := 0; i < MaxMessages+4; i++ {
			batch = append(batch, textsignal.Message{Role: textsignal.RoleUser, Content: fmt.Sprintf("m%d", i)})
		}
		require.NoError(t, s.AppendMessages(ctx, sess.ID, batch...))
		require.NoError(t, s.AppendMessages(ctx, sess.ID))

		got, err := s.LoadSession(ctx, sess.ID)
		require.NoError(t, err)
		require.Len(t, got.Messages, MaxMessages)
		assert.Equal(t, "m4", got.Messages[0].Content)
		assert.Equal(t, fmt.Sprintf("m%d", MaxMessages+3), got.Messages[MaxMessages-1].Content)
		assert.Equal(t, MaxMessages, got.UserTurns())
		assert.Equal(t, MaxMessages+4, got.Turns)
	})
}

func TestAppendMessages_TurnsSurviveCap(t *testing.T) {
	forEachStore(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()
		sess, err := s.CreateSession(ctx, prompt.DefaultTherapySettings())
		require.NoError(t, err)
		assert.Equal(t, 0, sess.Turns)

		for i := 0; i < 15; i++ {
			require.NoError(t, s.AppendMessages(ctx, sess.ID,
				textsignal.Message{Role: textsignal.RoleUser, Content: fmt.Sprintf("q%d", i)},
				textsignal.Message{Role: textsignal.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
			))
		}
		require.NoError(t, s.AppendHistory(ctx, sess.ID, entry(1)))

		got, err := s.LoadSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, MaxMessages/2, got.UserTurns())
		assert.Equal(t, 15, got.Turns, "assistant messages and history do not count")
	})
}

func TestSQLiteStore_ForeignKeysOnEveryConnection(t *testing.T) {
	s := tempSQLite(t)
	ctx := context.Background()

	// Hold two connections at once so the pool must open a second one.
	c1, err := s.DB().Conn(ctx)
	require.NoError(t, err)
	defer c1.Close()
	c2, err := s.DB().Conn(ctx)
	require.NoError(t, err)
	defer c2.Close()

	for i, c := range []*sql.Conn{c1, c2} {
		var on int
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on))
		assert.Equal(t, 1, on, "connection %d", i)
	}

	_, err = c2.ExecContext(ctx,
		`INSERT INTO session_messages (session_id, role, content) VALUES ('missing', 'user', 'x')`)
	assert.Error(t, err, "orphan row must violate the foreign key")
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)", sqliteDSN("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_pragma=foreign_keys(1)", sqliteDSN("file:a.db?mode=rwc"))
}

func TestSessionsAreIsolated(t *testing.T) {
	forEachStore(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()
		a, err := s.CreateSession(ctx, prompt.DefaultTherapySettings())
		require.NoError(t, err)
		b, err := s.CreateSession(ctx, prompt.DefaultTherapySettings())
		require.NoError(t, err)
		require.NotEqual(t, a.ID, b.ID)

		require.NoError(t, s.AppendHistory(ctx, a.ID, entry(1), entry(2)))
		got, err := s.LoadSession(ctx, b.ID)
		require.NoError(t, err)
		assert.Empty(t, got.History)
	})
}
// #endregion contract-tests

// #region redis-tests
func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), RedisConfig{Prefix: "ttl", TTL: time.Hour})
	defer s.Close()
	ctx := context.Background()

	sess, err := s.CreateSession(ctx, prompt.DefaultTherapySettings())
	require.NoError(t, err)
	require.NoError(t, s.AppendHistory(ctx, sess.ID, entry(1)))

	assert.Equal(t, time.Hour, mr.TTL("ttl:session:"+sess.ID))
	assert.Equal(t, time.Hour, mr.TTL("ttl:session:"+sess.ID+":history"))

	mr.FastForward(2 * time.Hour)
	_, err = s.LoadSession(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_KeyLayout(t *testing.T) {
	s, mr := tempRedis(t)
	ctx := context.Background()
	sess, err := s.CreateSession(ctx, prompt.DefaultTherapySettings())
	require.NoError(t, err)
	require.NoError(t, s.AppendMessages(ctx, sess.ID, textsignal.Message{Role: "user", Content: "hello"}))

	assert.True(t, mr.Exists("test:session:"+sess.ID))
	items, err := mr.List("test:session:" + sess.ID + ":messages")
	require.NoError(t, err)
	assert.Equal(t, []string{`{"role":"user","content":"hello"}`}, items)
}

func TestDialRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := DialRedis(context.Background(), addr, RedisConfig{})
	assert.Error(t, err)
}
// #endregion redis-tests

// #region open-tests
func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Kind: KindSQLite, SQLitePath: filepath.Join(t.TempDir(), "open.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	s.Close()

	mr := miniredis.RunT(t)
	s, err = Open(ctx, Options{Kind: KindRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	s.Close()

	_, err = Open(ctx, Options{Kind: "etcd"})
	assert.Error(t, err)
}
// #endregion open-tests
