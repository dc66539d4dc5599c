package ephemeris

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
)

const (
	serviceName     = "ephemeris.v1.Ephemeris"
	positionsMethod = "/" + serviceName + "/Positions"
)

var errClientClosed = errors.New("ephemeris client closed")

// #region client-struct

// GRPCClient is a Source backed by a remote ephemeris service.
type GRPCClient struct {
	conn   *grpc.ClientConn // nil when built around an injected connection
	cc     grpc.ClientConnInterface
	closed atomic.Bool
}

// #endregion client-struct

// #region constructor

// Dial connects to the ephemeris gRPC server at addr.
func Dial(addr string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &GRPCClient{conn: conn, cc: conn}, nil
}

// NewGRPCClientWithConn builds a client over an existing connection. The
// caller keeps ownership of cc; Close does not close it.
func NewGRPCClientWithConn(cc grpc.ClientConnInterface) *GRPCClient {
	return &GRPCClient{cc: cc}
}

// #endregion constructor

// #region close

// Close shuts down the gRPC connection. Later calls to Positions fail.
func (c *GRPCClient) Close() error {
	if c.closed.Swap(true) || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region positions

// Positions asks the remote service for q. A rejected query comes back as a
// validation error; every other failure is upstream. Nothing is retried.
func (c *GRPCClient) Positions(ctx context.Context, q Query) (PositionSet, error) {
	if c.closed.Load() {
		return PositionSet{}, errs.Upstream("positions", errClientClosed)
	}
	if err := ValidateQuery(q); err != nil {
		return PositionSet{}, err
	}
	req, err := encodeQuery(q)
	if err != nil {
		return PositionSet{}, errs.Upstream("positions", err)
	}

	ctx, span := tracer.Start(ctx, "ephemeris.Positions",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("kind", string(q.Kind))))
	defer span.End()

	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, positionsMethod, req, resp); err != nil {
		span.RecordError(err)
		if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
			return PositionSet{}, errs.Validation("query", "%s", st.Message())
		}
		return PositionSet{}, errs.Upstream("positions rpc", err)
	}

	set, err := decodeSet(resp)
	if err != nil {
		return PositionSet{}, err
	}
	if set.Kind == "" {
		set.Kind = q.Kind
	}
	return NormalizeSet(set)
}

// #endregion positions
