package payment

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMACVerifier_Verify(t *testing.T) {
	body := []byte(`{"event":"subscription.charged"}`)
	secret := "whsec"
	valid := hex.EncodeToString(Sign([]byte(secret), body))

	tests := []struct {
		name      string
		secret    string
		body      []byte
		signature string
		want      bool
	}{
		{name: "valid", secret: secret, body: body, signature: valid, want: true},
		{name: "valid with surrounding space", secret: secret, body: body, signature: " " + valid + "\n", want: true},
		{name: "tampered body", secret: secret, body: []byte(`{"event":"subscription.cancelled"}`), signature: valid, want: false},
		{name: "wrong secret", secret: "other", body: body, signature: valid, want: false},
		{name: "not hex", secret: secret, body: body, signature: "zz", want: false},
		{name: "empty signature", secret: secret, body: body, signature: "", want: false},
		{name: "empty secret rejects everything", secret: "", body: body, signature: hex.EncodeToString(Sign(nil, body)), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewHMACVerifier(tt.secret).Verify(tt.body, tt.signature))
		})
	}
}
