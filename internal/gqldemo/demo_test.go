package gqldemo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrhoseah/gqlrt/internal/gqlassemble"
)

func TestRegistryAssembles(t *testing.T) {
	reg := Registry()

	assembly, err := gqlassemble.Assemble(reg)
	require.NoError(t, err)

	_, err = assembly.Build()
	require.NoError(t, err)
}

func TestWidgetQueryResolves(t *testing.T) {
	reg := Registry()

	field, ok := reg.Queries["widget"]
	require.True(t, ok)

	effect := field.Resolve(map[string]any{"id": "w1"})
	result, err := effect(context.Background())
	require.NoError(t, err)

	widget, ok := result.(Widget)
	require.True(t, ok)
	assert.Equal(t, "w1", widget.ID)
}

func TestWidgetEntityResolvesReference(t *testing.T) {
	reg := Registry()

	entity, ok := reg.Entities["Widget"]
	require.True(t, ok)
	assert.Equal(t, []string{"id"}, entity.Keys)

	resolved, err := entity.ResolveReference(context.Background(), map[string]any{"id": "w7"})
	require.NoError(t, err)

	asMap, ok := resolved.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "w7", asMap["id"])
}

func TestTickerStreamEmitsIncrementingWidgets(t *testing.T) {
	stream := newTickerStream()
	defer stream.Close()

	value, ok, err := stream.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	widget, ok := value.(Widget)
	require.True(t, ok)
	assert.Equal(t, 1, widget.Price)
}
