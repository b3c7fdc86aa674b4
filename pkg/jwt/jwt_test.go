package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("secret", time.Hour)

	token, err := svc.GenerateToken("ada", RoleAdmin, 0)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ada", claims.Subject)
	assert.Equal(t, string(RoleAdmin), claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Errors(t *testing.T) {
	svc := NewService("secret", time.Hour)
	other := NewService("other", time.Hour)

	expired := &service{secret: []byte("secret"), defaultTTL: time.Hour, now: func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}}
	old, err := expired.GenerateToken("ada", RoleUser, time.Minute)
	require.NoError(t, err)

	forged, err := other.GenerateToken("ada", RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "garbage", token: "not-a-token", want: ErrInvalidToken},
		{name: "expired", token: old, want: ErrExpiredToken},
		{name: "wrong key", token: forged, want: ErrInvalidSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRoleAllows(t *testing.T) {
	assert.True(t, RoleAdmin.Allows(RoleUser))
	assert.True(t, RoleUser.Allows(RoleUser))
	assert.False(t, RoleUser.Allows(RoleAdmin))
	assert.False(t, Role("").Allows(RoleUser))
}
