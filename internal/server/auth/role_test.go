package auth

import (
	"testing"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("user")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, r)

	for _, bad := range []string{"", "Admin", "root", " user"} {
		_, err := ParseRole(bad)
		assert.ErrorIs(t, err, common.ErrorValidation, bad)
	}
}

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in       string
		want     Role
		accepted bool
	}{
		{in: "user", want: RoleUser, accepted: true},
		{in: "admin", want: RoleAdmin, accepted: true},
		{in: "", want: RoleUser, accepted: false},
		{in: "superuser", want: RoleUser, accepted: false},
		{in: "ADMIN", want: RoleUser, accepted: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeRole(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.accepted, ok)
		})
	}
}

func TestClaims_HasRole(t *testing.T) {
	c := &Claims{Role: RoleUser}
	assert.True(t, c.HasRole(RoleUser, RoleAdmin))
	assert.False(t, c.HasRole(RoleAdmin))
	assert.False(t, c.HasRole())
}
