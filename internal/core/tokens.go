package core

import (
	"strings"
	"unicode"
)

// Token is the result of parsing a closed-set value. When Recognized is
// false, Value is empty and Raw holds the original text.
type Token struct {
	Value      string
	Raw        string
	Recognized bool
}

// PropertyTypes is the closed set of listing categories, in canonical spelling.
var PropertyTypes = []string{"Apartment", "Villa", "PG", "Hotel", "Hostel"}

// Lifecycle statuses. Intake statuses may arrive in an upload; moderation
// statuses are only set through property administration.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Statuses is the closed set of property lifecycle statuses.
var Statuses = []string{StatusActive, StatusInactive, StatusPending, StatusApproved, StatusRejected}

// ParsePropertyType matches raw against PropertyTypes, ignoring case and all
// whitespace ("  villa " and "Vil la" both yield "Villa").
func ParsePropertyType(raw string) Token {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	return matchToken(raw, clean, PropertyTypes)
}

// ParseStatus matches raw against Statuses after trimming, ignoring case.
func ParseStatus(raw string) Token {
	return matchToken(raw, strings.TrimSpace(raw), Statuses)
}

func matchToken(raw, clean string, set []string) Token {
	if clean != "" {
		for _, v := range set {
			if strings.EqualFold(v, clean) {
				return Token{Value: v, Raw: raw, Recognized: true}
			}
		}
	}
	return Token{Raw: raw}
}
