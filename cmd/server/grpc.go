package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const queryMethod = "/flatdb.FlatDB/Query"

// jsonCodec lets the gRPC service exchange plain JSON messages, no
// protobuf definitions needed.
type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// GRPCQueryRequest is the input of flatdb.FlatDB/Query.
type GRPCQueryRequest struct {
	Database string `json:"database"`
	SQL      string `json:"sql"`
}

// FlatDBServer is the gRPC service: Query answers with the same Response a
// TCP client gets for the statement.
type FlatDBServer interface {
	Query(context.Context, *GRPCQueryRequest) (*Response, error)
}

func registerFlatDBServer(s *grpc.Server, srv FlatDBServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "flatdb.FlatDB",
		HandlerType: (*FlatDBServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Query", Handler: _FlatDB_Query_Handler},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "flatdb",
	}, srv)
}

func _FlatDB_Query_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GRPCQueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlatDBServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: queryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlatDBServer).Query(ctx, req.(*GRPCQueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// grpcService adapts Server to FlatDBServer. Authentication uses an
// "authorization: Bearer <jwt>" metadata entry.
type grpcService struct {
	server *Server
}

func (g grpcService) Query(ctx context.Context, req *GRPCQueryRequest) (*Response, error) {
	s := g.server

	identity := s.identity
	if s.authConfig.required() {
		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, errAuthRequired.Error())
		}
		token, ok := parseBearer(values[0])
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "expected a Bearer token")
		}
		result := validateJWT(s.authConfig, token)
		if result.err != nil {
			return nil, status.Error(codes.Unauthenticated, result.err.Error())
		}
		identity = result.identity
	}

	name := req.Database
	if name == "" {
		name = s.database
	}
	if name == "" {
		resp := errorResponse("query", errNoDatabase)
		return &resp, nil
	}
	database, err := s.schema(name)
	if err != nil {
		resp := errorResponse("query", err)
		return &resp, nil
	}

	resp := s.executeQuery(database, identity, req.SQL)
	return &resp, nil
}

// ServeGRPC starts the gRPC service on addr and returns the grpc server so
// the caller can stop it.
func (s *Server) ServeGRPC(addr string) (*grpc.Server, net.Addr, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("gRPC listen error: %w", err)
	}

	gs := grpc.NewServer()
	registerFlatDBServer(gs, grpcService{server: s})

	go func() {
		if err := gs.Serve(lis); err != nil {
			log.Printf("gRPC serve error: %v", err)
		}
	}()

	log.Printf("gRPC listening on %s", lis.Addr())
	return gs, lis.Addr(), nil
}
