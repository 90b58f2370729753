package gqlctx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniqueName(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("%s-%p", t.Name(), t)
}

func TestStoreGetMissing(t *testing.T) {
	slot := Make[string](uniqueName(t))
	store := NewStore()

	_, err := Get(store, slot)
	require.Error(t, err)
	var missing *MissingContext
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, slot.Name(), missing.Name)

	v, ok := GetOption(store, slot)
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestStoreSetThenGet(t *testing.T) {
	slot := Make[int](uniqueName(t))
	store := NewStore()

	Set(store, slot, 42)

	v, err := Get(store, slot)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v2, ok := GetOption(store, slot)
	assert.True(t, ok)
	assert.Equal(t, 42, v2)
}

func TestMakeDuplicateNamePanics(t *testing.T) {
	name := uniqueName(t)
	_ = Make[string](name)
	assert.Panics(t, func() { Make[string](name) })
}

// TestScopedRestoresPreviousValueOnSuccess covers testable property 7:
// scoped restores any previous slot value on both success and failure
// paths.
func TestScopedRestoresPreviousValueOnSuccess(t *testing.T) {
	slot := Make[string](uniqueName(t))
	store := NewStore()
	Set(store, slot, "outer")

	result, err := Scoped(context.Background(), store, slot, "inner", func(ctx context.Context) (any, error) {
		v, _ := Get(store, slot)
		return v, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "inner", result)

	after, err := Get(store, slot)
	require.NoError(t, err)
	assert.Equal(t, "outer", after, "previous binding must be restored after Scoped returns")
}

func TestScopedRestoresAbsenceWhenNoPreviousValue(t *testing.T) {
	slot := Make[string](uniqueName(t))
	store := NewStore()

	_, err := Scoped(context.Background(), store, slot, "inner", func(ctx context.Context) (any, error) {
		return nil, nil
	})
	require.NoError(t, err)

	_, ok := GetOption(store, slot)
	assert.False(t, ok, "slot must return to absent, not to a zero value")
}

func TestScopedRestoresOnFailure(t *testing.T) {
	slot := Make[string](uniqueName(t))
	store := NewStore()
	Set(store, slot, "outer")

	boom := errors.New("boom")
	_, err := Scoped(context.Background(), store, slot, "inner", func(ctx context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	after, err := Get(store, slot)
	require.NoError(t, err)
	assert.Equal(t, "outer", after)
}

func TestStoreConcurrentAccess(t *testing.T) {
	slot := Make[int](uniqueName(t))
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Set(store, slot, n)
			_, _ = GetOption(store, slot)
		}(i)
	}
	wg.Wait()
	_, ok := GetOption(store, slot)
	assert.True(t, ok)
}

func TestContainerBindAndGet(t *testing.T) {
	c := NewContainer(DependencySpec{"greeting": "hello"})
	v, err := c.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	c.Bind("count", 7)
	assert.True(t, c.Has("count"))
	assert.Equal(t, 7, c.MustGet("count"))

	_, err = c.Get("missing")
	assert.Error(t, err)
}

func TestContainerSpecIsCopiedNotAliased(t *testing.T) {
	spec := DependencySpec{"k": 1}
	c := NewContainer(spec)
	spec["k"] = 2

	v, err := c.Get("k")
	require.NoError(t, err)
	assert.Equal(t, 1, v, "container must copy the spec map at construction")
}

func TestContextRoundTrip(t *testing.T) {
	store := NewStore()
	container := NewContainer(nil)

	ctx := context.Background()
	ctx = WithStore(ctx, store)
	ctx = WithContainer(ctx, container)

	assert.Same(t, store, StoreFrom(ctx))
	assert.Same(t, container, ContainerFrom(ctx))
}

func TestContextFromEmptyReturnsNil(t *testing.T) {
	assert.Nil(t, StoreFrom(context.Background()))
	assert.Nil(t, ContainerFrom(context.Background()))
}
