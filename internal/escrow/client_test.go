package escrow

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMint = "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"

func TestSimulatedClient_DeterministicSignatures(t *testing.T) {
	c := NewSimulatedClient("program1", slog.Default())
	terms := ListingTerms{DailyRentLamports: 100, CollateralLamports: 1000, MinDurationDays: 1, MaxDurationDays: 30}

	first, err := c.List(context.Background(), testMint, terms)
	require.NoError(t, err)
	assert.True(t, first.Simulated)
	assert.Len(t, first.Signature, 64)

	second, err := c.List(context.Background(), testMint, terms)
	require.NoError(t, err)
	assert.Equal(t, first.Signature, second.Signature)

	// Different operations produce different signatures.
	rented, err := c.Rent(context.Background(), testMint, 7)
	require.NoError(t, err)
	assert.NotEqual(t, first.Signature, rented.Signature)
}

func TestSimulatedClient_FailNextFailsExactlyOnce(t *testing.T) {
	c := NewSimulatedClient("program1", slog.Default())
	c.FailNext = errors.New("rpc timeout")

	_, err := c.Rent(context.Background(), testMint, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc timeout")

	result, err := c.Rent(context.Background(), testMint, 7)
	require.NoError(t, err)
	assert.True(t, result.Simulated)
}

func TestSimulatedClient_RespectsContextCancellation(t *testing.T) {
	c := NewSimulatedClient("program1", slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Return(ctx, testMint)
	assert.ErrorIs(t, err, context.Canceled)
}
