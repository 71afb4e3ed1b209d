package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckUserAccess(t *testing.T) {
	checker := NewAccessChecker(map[string]AccessList{
		"myapp": {
			Allowed: []string{"Developer@Company.com", "*@partner.com"},
			Denied:  []string{"blocked@partner.com"},
		},
		"openapp": {
			Allowed: []string{"*"},
		},
	})

	tests := []struct {
		name  string
		email string
		app   string
		want  bool
	}{
		{"exact match", "developer@company.com", "myapp", true},
		{"exact match is case-insensitive", "DEVELOPER@company.com", "myapp", true},
		{"domain wildcard", "anyone@partner.com", "myapp", true},
		{"deny wins over wildcard", "blocked@partner.com", "myapp", false},
		{"unlisted email", "stranger@elsewhere.com", "myapp", false},
		{"star allows everyone", "stranger@elsewhere.com", "openapp", true},
		{"unknown app denies", "developer@company.com", "otherapp", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, checker.CheckUserAccess(tc.email, tc.app))
		})
	}
}

func TestLookupUserFallsBackToFirstEntry(t *testing.T) {
	known := LookupUser("admin@company.com")
	require.Equal(t, "admin-456", known.ID)

	fallback := LookupUser("unknown@nowhere.com")
	require.Equal(t, "user-123", fallback.ID)
	require.Equal(t, "developer@company.com", fallback.Email)
}
