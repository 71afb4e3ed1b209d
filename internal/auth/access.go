package auth

import "strings"

// AccessList holds allow/deny entries for one app. Allowed entries may be an
// exact email, "*" (any authenticated user) or "*@domain" (domain wildcard).
// An exact match in Denied always wins over any allow rule.
type AccessList struct {
	Allowed []string
	Denied  []string
}

// AccessChecker evaluates per-app allow/deny lists. This is a plain list
// lookup, not a policy engine.
type AccessChecker struct {
	apps map[string]AccessList
}

// NewAccessChecker constructs a checker over the provided per-app lists.
func NewAccessChecker(apps map[string]AccessList) *AccessChecker {
	normalized := make(map[string]AccessList, len(apps))
	for app, list := range apps {
		normalized[app] = AccessList{
			Allowed: lowerAll(list.Allowed),
			Denied:  lowerAll(list.Denied),
		}
	}
	return &AccessChecker{apps: normalized}
}

// CheckUserAccess reports whether the user may obtain a token for the app.
func (c *AccessChecker) CheckUserAccess(userEmail, appName string) bool {
	list, ok := c.apps[appName]
	if !ok {
		return false
	}

	email := strings.ToLower(strings.TrimSpace(userEmail))

	for _, denied := range list.Denied {
		if denied == email {
			return false
		}
	}

	for _, allowed := range list.Allowed {
		switch {
		case allowed == email:
			return true
		case allowed == "*":
			return true
		case strings.HasPrefix(allowed, "*@") && strings.HasSuffix(email, allowed[1:]):
			return true
		}
	}

	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
