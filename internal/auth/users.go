package auth

import "strings"

// MockUser is an entry in the development user directory. In production the
// identity arrives from the upstream auth service; this directory only backs
// the mock token endpoints.
type MockUser struct {
	ID    string
	Email string
	Name  string
	Roles []string
}

var mockUsers = []MockUser{
	{ID: "user-123", Email: "developer@company.com", Name: "Development User", Roles: []string{"user", "developer"}},
	{ID: "admin-456", Email: "admin@company.com", Name: "Admin User", Roles: []string{"user", "admin"}},
	{ID: "analyst-789", Email: "analyst@company.com", Name: "Business Analyst", Roles: []string{"user", "analyst"}},
}

// LookupUser resolves a directory entry by email, falling back to the first
// entry so local development always has an identity.
func LookupUser(email string) MockUser {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range mockUsers {
		if strings.ToLower(u.Email) == email {
			return u
		}
	}
	return mockUsers[0]
}
