package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasher_Hash(t *testing.T) {
	h := NewHasher("paradas-secret-salt")

	got := h.Hash("admin")
	assert.Equal(t, "af8f69a4e2cae3aef748c11fcb3e71107a2b4f777022e2f2e1d97b6a6e30aae5", got)
	assert.True(t, IsHash(got))
}

func TestHasher_Verify(t *testing.T) {
	h := NewHasher("salt")
	stored := h.Hash("s3cret")

	testCases := []struct {
		name     string
		password string
		stored   string
		expected bool
	}{
		{name: "Hashed match", password: "s3cret", stored: stored, expected: true},
		{name: "Hashed mismatch", password: "wrong", stored: stored, expected: false},
		{name: "Legacy plaintext match", password: "plain", stored: "plain", expected: true},
		{name: "Legacy plaintext mismatch", password: "plain", stored: "other", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, h.Verify(tc.password, tc.stored))
		})
	}
}

func TestIsHash(t *testing.T) {
	assert.False(t, IsHash("admin"))
	assert.False(t, IsHash("zz8f69a4e2cae3aef748c11fcb3e71107a2b4f777022e2f2e1d97b6a6e30aae5"))
	assert.True(t, IsHash("AF8F69A4E2CAE3AEF748C11FCB3E71107A2B4F777022E2F2E1D97B6A6E30AAE5"))
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, RoleLeaderShift2.Can(ResReportShift2))
	assert.False(t, RoleLeaderShift2.Can(ResReportShift1))
	assert.False(t, RoleLeaderShift1.Can(ResReports))
	assert.True(t, RoleProcesses.Can(ResMachines))
	assert.False(t, RoleProcesses.Can(ResReports))
	assert.True(t, RoleManager.Can(ResReports))
	assert.False(t, RoleManager.Can(ResUsers))
	assert.True(t, RoleIT.Can(ResUsers))
	assert.False(t, Role(9).Can(ResDashboard))

	assert.True(t, RoleLeaderShift3.CanAny(ResReports, ResReportShift3))
	assert.Equal(t, ResReportShift3, ReportResource(3))
}

func TestRoleRecording(t *testing.T) {
	testCases := []struct {
		role         Role
		canRecord    bool
		shift        int
		unrestricted bool
	}{
		{RoleLeaderShift1, true, 1, false},
		{RoleLeaderShift2, true, 2, false},
		{RoleLeaderShift3, true, 3, false},
		{RoleProcesses, false, 0, false},
		{RoleManager, false, 0, false},
		{RoleIT, true, 0, true},
		{Role(0), false, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.role.String(), func(t *testing.T) {
			assert.Equal(t, tc.canRecord, tc.role.CanRecord())
			assert.Equal(t, tc.shift, tc.role.Shift())
			assert.Equal(t, tc.unrestricted, tc.role.Unrestricted())
		})
	}
}
