package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocBumpsWithinBlock(t *testing.T) {
	a := New(128)
	s1 := a.Alloc(16)
	s2 := a.Alloc(16)
	require.Len(t, s1, 16)
	require.Len(t, s2, 16)
	assert.Equal(t, 1, a.NumBlocks())
}

func TestAllocSpillsToNewBlock(t *testing.T) {
	a := New(32)
	a.Alloc(24)
	a.Alloc(24) // doesn't fit in the remainder of block 1
	assert.Equal(t, 2, a.NumBlocks())
}

func TestOversizedAllocGetsDedicatedBlock(t *testing.T) {
	a := New(32)
	big := a.Alloc(1024)
	assert.Len(t, big, 1024)
	assert.Equal(t, 1, a.NumBlocks())
}

func TestInternReusesStorage(t *testing.T) {
	a := New(0)
	s1 := a.Intern("hello")
	s2 := a.Intern("hello")
	assert.Equal(t, s1, s2)
}

func TestResetReleasesBlocksWhenShrinking(t *testing.T) {
	a := New(32)
	a.Alloc(16)
	require.Equal(t, 1, a.NumBlocks())
	a.Reset(true, false)
	assert.Equal(t, 0, a.NumBlocks())
}

func TestResetWithoutShrinkReusesCapacity(t *testing.T) {
	a := New(64)
	a.Alloc(16)
	a.Reset(false, false)
	assert.Equal(t, 0, a.NumBlocks())
	a.Alloc(16)
	// the block freed by Reset should have been handed back out rather
	// than allocated fresh.
	assert.Equal(t, 1, a.NumBlocks())
}

func TestResetKeepsStringCacheWhenAsked(t *testing.T) {
	a := New(0)
	a.Intern("k")
	a.Reset(false, true)
	assert.NotNil(t, a.strings)
}
