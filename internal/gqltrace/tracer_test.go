package gqltrace

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabledIsNoop(t *testing.T) {
	m, err := New(&Config{Enabled: false}, nil)
	require.NoError(t, err)

	ctx, end := m.StartSpan(context.Background(), "graphql.parse")
	assert.NotNil(t, ctx)
	end()
}

func TestFieldSpanRecordsErrorWithoutPanicking(t *testing.T) {
	m, err := New(&Config{Enabled: false}, nil)
	require.NoError(t, err)

	ctx, end := m.FieldSpan(context.Background(), "Query", "hello", "hello")
	assert.NotNil(t, ctx)
	end(assert.AnError)
}

func TestInjectExtractHTTPRoundTrip(t *testing.T) {
	m, err := New(&Config{Enabled: false}, nil)
	require.NoError(t, err)

	headers := http.Header{}
	m.InjectHTTP(context.Background(), headers)
	ctx := m.ExtractHTTP(context.Background(), headers)
	assert.NotNil(t, ctx)
}

func TestShutdownWithoutProviderIsNoop(t *testing.T) {
	m, err := New(&Config{Enabled: false}, nil)
	require.NoError(t, err)
	assert.NoError(t, m.Shutdown(context.Background()))
}
