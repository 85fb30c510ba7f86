package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	serviceName           = "reelspin.DecisionService"
	requestDecisionMethod = "/" + serviceName + "/RequestDecision"
)

// DecisionRequest asks for the outcome of one spin
type DecisionRequest struct {
	SpinIndex int   `json:"spinIndex"`
	BetAmount int64 `json:"betAmount"`
}

// DecisionResponse is the outcome chosen by the policy service
type DecisionResponse struct {
	IsWin     bool  `json:"isWin"`
	WinAmount int64 `json:"winAmount"`
}

// DecisionServiceServer is the server API for the decision service
type DecisionServiceServer interface {
	RequestDecision(ctx context.Context, req *DecisionRequest) (*DecisionResponse, error)
}

func requestDecisionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DecisionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DecisionServiceServer).RequestDecision(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: requestDecisionMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DecisionServiceServer).RequestDecision(ctx, req.(*DecisionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// DecisionServiceDesc describes the decision service for grpc.Server registration
var DecisionServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DecisionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RequestDecision",
			Handler:    requestDecisionHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "reelspin/decision",
}

// RegisterDecisionServiceServer registers srv on s
func RegisterDecisionServiceServer(s grpc.ServiceRegistrar, srv DecisionServiceServer) {
	s.RegisterService(&DecisionServiceDesc, srv)
}
