package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityService_Generate(t *testing.T) {
	svc := NewIdentityService(32, 16)

	id, err := svc.Generate()
	require.NoError(t, err)

	assert.Len(t, id.Address, 32)
	assert.Len(t, id.Secret, 64)
	assert.Len(t, id.Digest, 64)
	assert.NotEqual(t, id.Secret, id.Digest)
	assert.Equal(t, svc.Digest(id.Secret), id.Digest)
}

func TestIdentityService_Generate_Unique(t *testing.T) {
	svc := NewIdentityService(32, 16)
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id, err := svc.Generate()
		require.NoError(t, err)
		assert.False(t, seen[id.Address], "duplicate address")
		seen[id.Address] = true
	}
}

func TestIdentityService_Digest_KnownValue(t *testing.T) {
	svc := NewIdentityService(32, 16)

	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", svc.Digest("abc"))
}

func TestIdentityService_Verify(t *testing.T) {
	svc := NewIdentityService(32, 16)
	id, err := svc.Generate()
	require.NoError(t, err)

	assert.True(t, svc.Verify(id.Secret, id.Digest))
	assert.False(t, svc.Verify(id.Secret+"0", id.Digest))
	assert.False(t, svc.Verify(id.Secret, ""))
	assert.False(t, svc.Verify("", id.Digest))
}
