package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cheapArgon2 = Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8}

func TestArgon2HashService_HashAndVerify(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("S3cure-pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))

	match, err := svc.Verify("S3cure-pass", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = svc.Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestArgon2HashService_UniqueSalts(t *testing.T) {
	svc := NewArgon2HashServiceWithParams(cheapArgon2)

	hash1, err := svc.Hash("same-password")
	require.NoError(t, err)
	hash2, err := svc.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestArgon2HashService_CustomParamsEncoded(t *testing.T) {
	svc := NewArgon2HashServiceWithParams(cheapArgon2)

	hash, err := svc.Hash("pw")
	require.NoError(t, err)
	assert.Contains(t, hash, "m=1024,t=1,p=1")

	// Hashes verify with whatever parameters they were created with.
	match, err := NewArgon2HashService().Verify("pw", hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestArgon2HashService_VerifyMalformed(t *testing.T) {
	svc := NewArgon2HashServiceWithParams(cheapArgon2)

	tests := []struct {
		name string
		hash string
	}{
		{"not a hash", "not-a-valid-hash"},
		{"wrong algorithm", "$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA"},
		{"wrong version", "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$aGFzaA"},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify("password", tt.hash)
			assert.Error(t, err)
		})
	}
}

func TestArgon2HashService_LongPassword(t *testing.T) {
	svc := NewArgon2HashServiceWithParams(cheapArgon2)

	long := strings.Repeat("a", 1000)
	hash, err := svc.Hash(long)
	require.NoError(t, err)

	match, err := svc.Verify(long, hash)
	require.NoError(t, err)
	assert.True(t, match)
}
