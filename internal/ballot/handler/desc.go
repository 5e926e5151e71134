package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ballot.v1.BallotService"

// Full method names, as seen by interceptors.
const (
	MethodSubmitDirectVote     = "/" + ServiceName + "/SubmitDirectVote"
	MethodSubmitVerifiedVote   = "/" + ServiceName + "/SubmitVerifiedVote"
	MethodRetryRecording       = "/" + ServiceName + "/RetryRecording"
	MethodGetTallies           = "/" + ServiceName + "/GetTallies"
	MethodListProposals        = "/" + ServiceName + "/ListProposals"
	MethodCheckEligibility     = "/" + ServiceName + "/CheckEligibility"
	MethodUpdateProposalStatus = "/" + ServiceName + "/UpdateProposalStatus"
)

// BallotServer is the server API for BallotService. Requests and responses are google.protobuf.Struct.
type BallotServer interface {
	SubmitDirectVote(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitVerifiedVote(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RetryRecording(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTallies(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListProposals(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckEligibility(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProposalStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(BallotServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BallotServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(BallotServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ServiceDesc describes BallotService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BallotServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SubmitDirectVote", BallotServer.SubmitDirectVote),
		unary("SubmitVerifiedVote", BallotServer.SubmitVerifiedVote),
		unary("RetryRecording", BallotServer.RetryRecording),
		unary("GetTallies", BallotServer.GetTallies),
		unary("ListProposals", BallotServer.ListProposals),
		unary("CheckEligibility", BallotServer.CheckEligibility),
		unary("UpdateProposalStatus", BallotServer.UpdateProposalStatus),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ballot/v1/ballot.proto",
}

// RegisterBallotServer registers srv on s.
func RegisterBallotServer(s grpc.ServiceRegistrar, srv BallotServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls BallotService methods by full name.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a Client over cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes fullMethod with in and returns the response struct.
func (c *Client) Call(ctx context.Context, fullMethod string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
