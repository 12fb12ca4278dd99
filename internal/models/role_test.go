package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole(t *testing.T) {
	tests := []struct {
		role        Role
		valid       bool
		canModerate bool
	}{
		{RoleUser, true, false},
		{RoleAdmin, true, true},
		{RoleSuperAdmin, true, true},
		{Role("citizen"), false, false},
		{Role(""), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.role.Valid())
			assert.Equal(t, tt.canModerate, tt.role.CanModerate())
		})
	}
}

func TestReportStatus_Terminal(t *testing.T) {
	assert.False(t, ReportPending.Terminal())
	assert.True(t, ReportVerified.Terminal())
	assert.True(t, ReportRejected.Terminal())
}
