package myfatoorah

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"Event":"InvoiceStatusChanged","Data":{"InvoiceId":123,"InvoiceStatus":"Paid"}}`)
	secret := "s3cret"
	sig := ComputeSignature(payload, secret)

	assert.Len(t, sig, 64)
	assert.True(t, VerifySignature(payload, sig, secret))
	assert.True(t, VerifySignature(payload, strings.ToUpper(sig), secret), "hex case is irrelevant")
	assert.True(t, VerifySignature(payload, " "+sig+"\n", secret))

	tests := []struct {
		name      string
		payload   []byte
		signature string
		secret    string
	}{
		{"tampered body", []byte(strings.Replace(string(payload), "Paid", "Failed", 1)), sig, secret},
		{"wrong secret", payload, sig, "other"},
		{"flipped digit", payload, flipFirst(sig), secret},
		{"truncated", payload, sig[:62], secret},
		{"not hex", payload, strings.Repeat("zz", 32), secret},
		{"empty signature", payload, "", secret},
		{"empty secret", payload, ComputeSignature(payload, ""), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifySignature(tt.payload, tt.signature, tt.secret))
		})
	}
}

func flipFirst(sig string) string {
	if sig[0] == '0' {
		return "1" + sig[1:]
	}
	return "0" + sig[1:]
}
