package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMACSignatureService_SignAndVerify(t *testing.T) {
	svc := NewHMACSignatureService()
	payload := `{"user_id":"u1","event":"RECHARGE","amount":"100"}`

	signature := svc.Sign("my-secret-key", payload)

	assert.Regexp(t, `^v1=[0-9a-f]{64}$`, signature)
	assert.True(t, svc.Verify("my-secret-key", payload, signature))
}

func TestHMACSignatureService_VerifyFails(t *testing.T) {
	svc := NewHMACSignatureService()
	sig := svc.Sign("key", "payload")

	tests := []struct {
		name      string
		key       string
		payload   string
		signature string
	}{
		{"wrong key", "other", "payload", sig},
		{"tampered payload", "key", "payload!", sig},
		{"garbage", "key", "payload", "invalidsignature"},
		{"missing version prefix", "key", "payload", strings.TrimPrefix(sig, "v1=")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, svc.Verify(tt.key, tt.payload, tt.signature))
		})
	}
}

func TestHMACSignatureService_Deterministic(t *testing.T) {
	svc := NewHMACSignatureService()
	assert.Equal(t, svc.Sign("key", "data"), svc.Sign("key", "data"))
}
