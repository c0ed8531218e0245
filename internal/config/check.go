package config

import (
	"errors"
	"fmt"
	"strings"
)

// CheckResult holds the outcome of a security configuration inspection.
// Issues block startup in production; Warnings are advisory.
type CheckResult struct {
	Issues   []string
	Warnings []string
}

// Inspect checks environment-derived security settings. Rules that only matter
// on a public deployment escalate from Warnings to Issues when the environment
// is production or strict is true. The SameSite=none rule is always an issue:
// browsers drop such cookies without the Secure flag, in every environment.
func (c *Config) Inspect(strict bool) CheckResult {
	var res CheckResult
	enforce := c.IsProduction() || strict

	sameSite := strings.ToLower(c.SessionSameSite)
	trustedOrigins := c.TrustedOriginList()
	statefulDomains := c.StatefulDomainList()

	if !strings.HasPrefix(c.AppURL, "https://") {
		if enforce {
			res.Issues = append(res.Issues, "APP_URL must use https:// in production")
		} else {
			res.Warnings = append(res.Warnings, "APP_URL is not https:// yet")
		}
	}

	if !c.SessionSecureCookie {
		if enforce {
			res.Issues = append(res.Issues, "SESSION_SECURE_COOKIE must be true in production")
		} else {
			res.Warnings = append(res.Warnings, "SESSION_SECURE_COOKIE is still false")
		}
	}

	if sameSite == "none" && !c.SessionSecureCookie {
		res.Issues = append(res.Issues, "SESSION_SAME_SITE=none requires SESSION_SECURE_COOKIE=true")
	}

	if len(trustedOrigins) == 0 {
		res.Issues = append(res.Issues, "TRUSTED_FRONTEND_ORIGINS must not be empty")
	}

	if len(statefulDomains) == 0 {
		res.Issues = append(res.Issues, "STATEFUL_DOMAINS must not be empty")
	}

	for _, origin := range trustedOrigins {
		if enforce && !strings.HasPrefix(origin, "https://") {
			res.Issues = append(res.Issues, fmt.Sprintf("trusted origin must use https:// (%s)", origin))
		}
	}

	return res
}

// AssertProductionSafe inspects the config in production mode and returns an
// error aggregating all issues when any exist. Outside production it returns
// nil. Callers must treat a non-nil error as fatal before serving traffic.
func (c *Config) AssertProductionSafe() error {
	if !c.IsProduction() {
		return nil
	}
	res := c.Inspect(false)
	if len(res.Issues) == 0 {
		return nil
	}
	return errors.New("invalid production security config:\n- " + strings.Join(res.Issues, "\n- "))
}
