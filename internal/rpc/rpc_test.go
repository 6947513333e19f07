package rpc

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/geometry"
	"github.com/danielpatrickdp/emotion-geometry/internal/prompt"
	"github.com/danielpatrickdp/emotion-geometry/internal/protocol"
	"github.com/danielpatrickdp/emotion-geometry/internal/session"
	"github.com/danielpatrickdp/emotion-geometry/internal/store"
)

// #region helpers
func startServer(t *testing.T) (*Client, *session.Manager) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "rpc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	mgr := session.NewManager(engine.New(engine.DefaultConfig()), st, nil, nil, nil)

	lis := bufconn.Listen(1 << 20)
	gs := NewServer(mgr, nil).Register()
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	c := NewClientWithConn(conn)
	t.Cleanup(func() { c.Close() })
	return c, mgr
}

// #endregion helpers

// #region analyze-tests
func TestAnalyze_OverGRPC(t *testing.T) {
	c, _ := startServer(t)
	ev := geometry.EmotionVector{Sadness: 9, Anger: 2, Fear: 6, Disgust: 3}

	resp, err := c.Analyze(context.Background(), engine.Request{Emotions: &ev})
	require.NoError(t, err)
	assert.Equal(t, protocol.CrisisCritical, resp.Directive.CrisisLevel)
	assert.Equal(t, ev, resp.Emotions)
	assert.True(t, resp.Recorded)
	assert.Len(t, resp.History, 1)
}

func TestAnalyzeSession_OverGRPC(t *testing.T) {
	c, mgr := startServer(t)
	ctx := context.Background()
	sess, err := mgr.Create(ctx, prompt.DefaultTherapySettings())
	require.NoError(t, err)

	res, err := c.AnalyzeSession(ctx, sess.ID, session.TurnInput{Message: "My name is Alex"})
	require.NoError(t, err)
	assert.Equal(t, sess.ID, res.SessionID)
	assert.Equal(t, "Alex", res.Response.PersonalContext.Name)

	stored, err := mgr.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alex", stored.PersonalContext.Name)
}

func TestAnalyzeSession_NotFound(t *testing.T) {
	c, _ := startServer(t)
	_, err := c.AnalyzeSession(context.Background(), "missing", session.TurnInput{})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(errors.Unwrap(err)))
}

func TestAnalyzeSession_RequiresID(t *testing.T) {
	c, _ := startServer(t)
	_, err := c.AnalyzeSession(context.Background(), "", session.TurnInput{})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(errors.Unwrap(err)))
}

// #endregion analyze-tests

// #region health-tests
func TestServing(t *testing.T) {
	c, _ := startServer(t)
	ok, err := c.Serving(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

// #endregion health-tests

// #region codec-tests
func TestFromStruct_InvalidShape(t *testing.T) {
	s, err := structpb.NewStruct(map[string]interface{}{"emotions": "not an object"})
	require.NoError(t, err)
	var req engine.Request
	assert.Error(t, fromStruct(s, &req))
}

func TestFromStruct_Nil(t *testing.T) {
	var req engine.Request
	require.NoError(t, fromStruct(nil, &req))
	assert.Nil(t, req.Emotions)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("localhost:0")
	require.NoError(t, err)
	defer c.Close()
}

// #endregion codec-tests
