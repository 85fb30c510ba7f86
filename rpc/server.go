package rpc

import (
	"context"
	"errors"
	"time"

	"reelspin/service"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DecisionServer exposes a DecisionProvider over gRPC
type DecisionServer struct {
	provider service.DecisionProvider
}

// NewDecisionServer creates a decision server backed by provider
func NewDecisionServer(provider service.DecisionProvider) *DecisionServer {
	return &DecisionServer{provider: provider}
}

// RequestDecision resolves one spin's outcome
func (s *DecisionServer) RequestDecision(ctx context.Context, req *DecisionRequest) (*DecisionResponse, error) {
	if req.SpinIndex <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "spin index must be positive, got %d", req.SpinIndex)
	}
	if req.BetAmount <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "bet must be positive, got %d", req.BetAmount)
	}

	decision, err := s.provider.RequestDecision(ctx, req.SpinIndex, req.BetAmount)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, status.Error(codes.DeadlineExceeded, err.Error())
		case errors.Is(err, context.Canceled):
			return nil, status.Error(codes.Canceled, err.Error())
		default:
			return nil, status.Error(codes.Unavailable, err.Error())
		}
	}

	return &DecisionResponse{IsWin: decision.IsWin, WinAmount: decision.WinAmount}, nil
}

// NewGRPCServer creates a grpc.Server with the decision service registered
func NewGRPCServer(provider service.DecisionProvider) *grpc.Server {
	server := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor))
	RegisterDecisionServiceServer(server, NewDecisionServer(provider))
	return server
}

func loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	entry := log.WithFields(log.Fields{
		"method":   info.FullMethod,
		"duration": time.Since(start),
		"code":     status.Code(err),
	})
	if err != nil {
		entry.WithError(err).Warn("gRPC request failed")
	} else {
		entry.Debug("gRPC request served")
	}
	return resp, err
}
