package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoles(t *testing.T) {
	got := NormalizeRoles([]string{" Admin ", "", "  ", "VIEWER"})
	assert.Equal(t, []string{"admin", "viewer"}, got)
}

func TestPrincipalIsAdmin(t *testing.T) {
	assert.True(t, Principal{Roles: []string{"ADMIN"}}.IsAdmin())
	assert.False(t, Principal{Roles: []string{"player"}}.IsAdmin())
}
