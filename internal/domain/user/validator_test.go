package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLogin(t *testing.T) {
	v := NewCredentialsValidator()

	tests := []struct {
		name    string
		login   string
		wantErr bool
	}{
		{"valid login", "tech.silva", false},
		{"valid email-style login", "tech@empresa.com", false},
		{"too short", "ab", true},
		{"too long", "a-login-that-is-definitely-way-too-long", true},
		{"forbidden characters", "tech silva!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateLogin(tt.login)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	v := NewCredentialsValidator()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "telhado123", false},
		{"too short", "tel123", true},
		{"no digit", "telhadoforte", true},
		{"no lowercase", "12345678", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
