package gqlnode

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeIDRoundTrip(t *testing.T) {
	id := EncodeID("User", "42")
	typeName, localID, err := DecodeID(id)
	require.NoError(t, err)
	assert.Equal(t, "User", typeName)
	assert.Equal(t, "42", localID)
}

func TestDecodeIDRejectsMalformed(t *testing.T) {
	_, _, err := DecodeID("not-base64!!")
	assert.Error(t, err)
}

func TestRegistryResolveDispatchesToRegisteredType(t *testing.T) {
	reg := NewRegistry()
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "User",
		Fields: graphql.Fields{"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)}},
	})
	reg.Register("User", userType, func(ctx context.Context, id string) (any, error) {
		return map[string]any{"id": id}, nil
	})

	value, typeName, err := reg.Resolve(context.Background(), EncodeID("User", "7"))
	require.NoError(t, err)
	assert.Equal(t, "User", typeName)
	assert.Equal(t, "7", value.(map[string]any)["id"])
}

func TestRegistryResolveUnknownTypeErrors(t *testing.T) {
	reg := NewRegistry()
	_, _, err := reg.Resolve(context.Background(), EncodeID("Ghost", "1"))
	assert.Error(t, err)
}
