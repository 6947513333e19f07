package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/session"
)

// #region client-struct
// Client wraps a gRPC connection to an AffectEngine server.
type Client struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}
// #endregion client-struct

// #region constructor
// NewClient connects to the AffectEngine server at addr.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return NewClientWithConn(conn), nil
}

// NewClientWithConn wraps an existing connection. Close closes conn.
func NewClientWithConn(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn, health: healthpb.NewHealthClient(conn)}
}
// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
// #endregion close

// #region analyze
// Analyze sends a stateless analysis request.
func (c *Client) Analyze(ctx context.Context, req engine.Request) (engine.Response, error) {
	var resp engine.Response
	if err := c.invoke(ctx, analyzeMethod, req, &resp); err != nil {
		return engine.Response{}, fmt.Errorf("analyze rpc: %w", err)
	}
	return resp, nil
}

// AnalyzeSession runs one turn on a stored session.
func (c *Client) AnalyzeSession(ctx context.Context, sessionID string, in session.TurnInput) (session.Result, error) {
	var res session.Result
	if err := c.invoke(ctx, analyzeSessionMethod, SessionRequest{SessionID: sessionID, TurnInput: in}, &res); err != nil {
		return session.Result{}, fmt.Errorf("analyze session rpc: %w", err)
	}
	return res, nil
}
// #endregion analyze

// #region health
// Serving reports whether the server's AffectEngine service is serving.
func (c *Client) Serving(ctx context.Context) (bool, error) {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return false, fmt.Errorf("health rpc: %w", err)
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}
// #endregion health

func (c *Client) invoke(ctx context.Context, method string, in, out interface{}) error {
	req, err := toStruct(in)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		return err
	}
	return fromStruct(resp, out)
}
