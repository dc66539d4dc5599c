package ephemeris

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
)

// #region service-desc

// PositionsServer is the server side of the Positions RPC.
type PositionsServer interface {
	Positions(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the ephemeris service for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*PositionsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Positions", Handler: positionsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ephemeris/v1/ephemeris.proto",
}

// Register installs srv on r.
func Register(r grpc.ServiceRegistrar, srv PositionsServer) {
	r.RegisterService(&ServiceDesc, srv)
}

func positionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PositionsServer).Positions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: positionsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PositionsServer).Positions(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion service-desc

// #region server

// Server exposes any Source over gRPC.
type Server struct {
	src    Source
	logger *zap.Logger
}

// NewServer wraps src. A nil logger is replaced by a no-op logger.
func NewServer(src Source, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{src: src, logger: logger}
}

// Positions decodes the request, queries the wrapped source and encodes the set.
func (s *Server) Positions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q, err := decodeQuery(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	set, err := s.src.Positions(ctx, q)
	if err != nil {
		code := statusCode(err)
		s.logger.Warn("positions failed",
			zap.Time("instant", q.Instant),
			zap.String("kind", string(q.Kind)),
			zap.String("code", code.String()),
			zap.Error(err))
		return nil, status.Error(code, err.Error())
	}
	out, err := encodeSet(set)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s.logger.Debug("positions served",
		zap.Time("instant", set.Instant),
		zap.String("kind", string(set.Kind)),
		zap.Int("bodies", len(set.Positions)))
	return out, nil
}

func statusCode(err error) codes.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, errs.ErrValidation):
		return codes.InvalidArgument
	case errors.Is(err, errs.ErrMissingInput):
		return codes.NotFound
	default:
		return codes.Internal
	}
}

// #endregion server
