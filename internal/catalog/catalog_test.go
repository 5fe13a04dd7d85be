package catalog

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderlabs/cinder-client/internal/shared"
)

type countingFetcher struct {
	calls  map[string]int
	assets map[string][]shared.Asset
	err    error
}

func (f *countingFetcher) BurnableAssets(_ context.Context, owner string) ([]shared.Asset, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[owner]++
	if f.err != nil {
		return nil, f.err
	}
	return f.assets[owner], nil
}

func TestAssetsCachedAfterFirstFetch(t *testing.T) {
	f := &countingFetcher{assets: map[string][]shared.Asset{
		"alice.wam": {{AssetID: "1"}, {AssetID: "2"}},
	}}
	c := New(f)

	got, err := c.Assets(context.Background(), "alice.wam")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = c.Assets(context.Background(), " Alice.WAM ")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, f.calls["alice.wam"])
	assert.True(t, c.Cached("alice.wam"))
}

func TestFetchFailureNotCached(t *testing.T) {
	f := &countingFetcher{err: errors.New("backend down")}
	c := New(f)

	_, err := c.Assets(context.Background(), "alice.wam")
	require.Error(t, err)
	assert.False(t, c.Cached("alice.wam"))

	f.err = nil
	got, err := c.Assets(context.Background(), "alice.wam")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 2, f.calls["alice.wam"])
}

func TestInvalidateDropsOneAsset(t *testing.T) {
	f := &countingFetcher{assets: map[string][]shared.Asset{
		"alice.wam": {{AssetID: "1"}, {AssetID: "2"}},
	}}
	c := New(f)
	_, err := c.Assets(context.Background(), "alice.wam")
	require.NoError(t, err)

	c.Invalidate("alice.wam", "1")

	_, ok := c.Lookup("alice.wam", "1")
	assert.False(t, ok)
	a, ok := c.Lookup("alice.wam", "2")
	assert.True(t, ok)
	assert.Equal(t, "2", a.AssetID)

	// source slice untouched
	assert.Len(t, f.assets["alice.wam"], 2)
	assert.Equal(t, 1, f.calls["alice.wam"])
}

func TestInvalidateOwnerRefetches(t *testing.T) {
	f := &countingFetcher{assets: map[string][]shared.Asset{
		"alice.wam": {{AssetID: "1"}},
	}}
	c := New(f)

	_, err := c.Assets(context.Background(), "alice.wam")
	require.NoError(t, err)
	c.InvalidateOwner("alice.wam")
	assert.False(t, c.Cached("alice.wam"))

	_, found, err := c.Find(context.Background(), "alice.wam", "1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, f.calls["alice.wam"])
}

func TestInvalidateUnknownOwnerIsNoOp(t *testing.T) {
	c := New(&countingFetcher{})
	assert.NotPanics(t, func() { c.Invalidate("nobody", "1") })
	assert.False(t, c.Cached("nobody"))
}
