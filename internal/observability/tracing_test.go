package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarioai/diario/internal/log"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	t.Parallel()

	shutdown, err := Setup(context.Background(), Config{}, log.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_NilLogger(t *testing.T) {
	t.Parallel()

	shutdown, err := Setup(context.Background(), Config{}, nil)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
}
