package rpc

import (
	"context"
	"fmt"

	"reelspin/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DecisionClient requests spin outcomes from a remote decision service.
// It satisfies service.DecisionProvider.
type DecisionClient struct {
	conn *grpc.ClientConn
}

// Dial creates a client for the decision service at addr
func Dial(addr string, opts ...grpc.DialOption) (*DecisionClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to decision service: %w", err)
	}
	return &DecisionClient{conn: conn}, nil
}

// RequestDecision asks the remote policy for the outcome of one spin
func (c *DecisionClient) RequestDecision(ctx context.Context, spinIndex int, betAmount int64) (models.OutcomeDecision, error) {
	req := &DecisionRequest{SpinIndex: spinIndex, BetAmount: betAmount}
	resp := new(DecisionResponse)

	if err := c.conn.Invoke(ctx, requestDecisionMethod, req, resp); err != nil {
		return models.LossDecision(), fmt.Errorf("decision request failed: %w", err)
	}

	return models.OutcomeDecision{IsWin: resp.IsWin, WinAmount: resp.WinAmount}.Normalize(), nil
}

// Close closes the underlying connection
func (c *DecisionClient) Close() error {
	return c.conn.Close()
}
