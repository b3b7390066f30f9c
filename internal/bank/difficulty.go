package bank

import (
	"fmt"
	"strings"
)

// Difficulty is one of the three stratification tiers.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Tiers lists the difficulties in stratification order.
var Tiers = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty parses a tier name case-insensitively.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, true
	case "medium":
		return Medium, true
	case "hard":
		return Hard, true
	}
	return "", false
}

// coerceDifficulty returns the parsed tier, or fallback when s is missing or
// unrecognized.
func coerceDifficulty(s string, fallback Difficulty) Difficulty {
	if d, ok := ParseDifficulty(s); ok {
		return d
	}
	return fallback
}

// TierTargets holds the per-tier item counts for a request of n items.
type TierTargets map[Difficulty]int

// SplitTiers splits n into 30% easy, 40% medium, and hard absorbing the
// rounding remainder, so the three always sum to n.
func SplitTiers(n int) TierTargets {
	if n <= 0 {
		return TierTargets{Easy: 0, Medium: 0, Hard: 0}
	}
	easy := n * 3 / 10
	medium := n * 4 / 10
	return TierTargets{Easy: easy, Medium: medium, Hard: n - easy - medium}
}

const maxDomainLen = 100

// ValidateDomain checks that domain is 1..100 characters of letters, digits,
// space and "-/.+#&".
func ValidateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("%w: domain is empty", ErrInvalidDomain)
	}
	if len(domain) > maxDomainLen {
		return fmt.Errorf("%w: domain exceeds %d characters", ErrInvalidDomain, maxDomainLen)
	}
	if strings.TrimSpace(domain) == "" {
		return fmt.Errorf("%w: domain is blank", ErrInvalidDomain)
	}
	for _, r := range domain {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune(" -/.+#&", r):
		default:
			return fmt.Errorf("%w: character %q not allowed", ErrInvalidDomain, r)
		}
	}
	return nil
}
