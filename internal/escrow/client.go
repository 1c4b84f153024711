// Package escrow wraps the on-chain program that holds collateral and rent
// in trust during a rental. The program's internal logic is out of scope
// here; this layer only issues calls and reports their outcome.
package escrow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/solrent/solrent/internal/metrics"
)

// ListingTerms carries the numeric terms sent with a list call.
type ListingTerms struct {
	DailyRentLamports  int64
	CollateralLamports int64
	MinDurationDays    int
	MaxDurationDays    int
}

// CallResult reports one completed escrow call. Simulated marks results that
// never touched the chain; callers surface that flag rather than assume a
// real transfer happened.
type CallResult struct {
	Signature string
	Simulated bool
}

// Client is the escrow authority boundary. Each call is a single
// non-cancellable request-response: on error, no partial on-chain effect is
// assumed to have occurred.
type Client interface {
	// List escrows the NFT for rental under the given terms.
	List(ctx context.Context, mintAddress string, terms ListingTerms) (*CallResult, error)
	// Rent locks collateral and rent for durationDays.
	Rent(ctx context.Context, mintAddress string, durationDays int) (*CallResult, error)
	// Return releases the NFT back to the owner and refunds collateral.
	Return(ctx context.Context, mintAddress string) (*CallResult, error)
}

// SimulatedClient stands in for the deployed program. It produces
// deterministic fake signatures so flows are exercised end to end without a
// cluster. Known gap: a simulated success proves nothing about on-chain
// state.
type SimulatedClient struct {
	programID string
	logger    *slog.Logger

	// FailNext, when set, makes the next call return this error. Test hook
	// for exercising the escrow-failure paths.
	FailNext error
}

// NewSimulatedClient creates a simulated escrow client for programID.
func NewSimulatedClient(programID string, logger *slog.Logger) *SimulatedClient {
	return &SimulatedClient{programID: programID, logger: logger}
}

func (c *SimulatedClient) call(ctx context.Context, op, mintAddress string, args string) (*CallResult, error) {
	if err := ctx.Err(); err != nil {
		metrics.EscrowCalls.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("escrow %s: %w", op, err)
	}

	if err := c.FailNext; err != nil {
		c.FailNext = nil
		metrics.EscrowCalls.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("escrow %s: %w", op, err)
	}

	sum := sha256.Sum256([]byte(c.programID + "|" + op + "|" + mintAddress + "|" + args))
	result := &CallResult{
		Signature: hex.EncodeToString(sum[:]),
		Simulated: true,
	}

	metrics.EscrowCalls.WithLabelValues(op, "simulated").Inc()
	c.logger.Info("escrow call simulated",
		slog.String("operation", op),
		slog.String("mint_address", mintAddress),
		slog.String("signature", result.Signature[:16]),
	)
	return result, nil
}

func (c *SimulatedClient) List(ctx context.Context, mintAddress string, terms ListingTerms) (*CallResult, error) {
	args := fmt.Sprintf("%d|%d|%d|%d", terms.DailyRentLamports, terms.CollateralLamports, terms.MinDurationDays, terms.MaxDurationDays)
	return c.call(ctx, "list", mintAddress, args)
}

func (c *SimulatedClient) Rent(ctx context.Context, mintAddress string, durationDays int) (*CallResult, error) {
	return c.call(ctx, "rent", mintAddress, fmt.Sprintf("%d", durationDays))
}

func (c *SimulatedClient) Return(ctx context.Context, mintAddress string) (*CallResult, error) {
	return c.call(ctx, "return", mintAddress, "")
}
