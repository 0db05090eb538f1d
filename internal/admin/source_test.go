package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSource(t *testing.T) {
	id, err := StaticSource(" d--abc ").DeviceID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "d--abc", id)

	_, err = StaticSource("").DeviceID(context.Background())
	assert.ErrorIs(t, err, ErrNoIdentifier)
}

func TestChainSource_FirstNonEmptyWins(t *testing.T) {
	platformErr := errors.New("no dmi")
	chain := ChainSource{
		StaticSource(""),
		SourceFunc(func(context.Context) (string, error) { return "", platformErr }),
		nil,
		StaticSource("i--install"),
		StaticSource("never-reached"),
	}

	id, err := chain.DeviceID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "i--install", id)
}

func TestChainSource_AllFail(t *testing.T) {
	platformErr := errors.New("no dmi")
	chain := ChainSource{
		SourceFunc(func(context.Context) (string, error) { return "", platformErr }),
		SourceFunc(func(context.Context) (string, error) { return "  ", nil }),
	}

	_, err := chain.DeviceID(context.Background())
	assert.ErrorIs(t, err, ErrNoIdentifier)
	assert.ErrorIs(t, err, platformErr)

	_, err = ChainSource{}.DeviceID(context.Background())
	assert.ErrorIs(t, err, ErrNoIdentifier)
}
