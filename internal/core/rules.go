package core

// rules.go declares the schema tier as a data-driven rule table.
//
// Each FieldRule names a FieldRecord accessor and the checks applied to it.
// Checks report exactly their own message. Required checks fire on nil or
// blank values; length, pattern and email checks skip empty values so an
// optional column may be left blank. This is looser than bean-style
// @Pattern, which also rejects "": the workbook reader cannot tell a blank
// cell inside a row from an absent one, so both are treated as not given.

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// CheckKind identifies a schema check.
type CheckKind int

const (
	CheckRequired CheckKind = iota
	CheckMaxLength
	CheckPattern
	CheckEmail
)

// Check is one constraint on a field value.
type Check struct {
	Kind    CheckKind
	Max     int
	Pattern *regexp.Regexp
	Message string
}

// FieldRule binds a set of checks to one field of the record.
type FieldRule struct {
	Field  string
	Value  func(*FieldRecord) *string
	Checks []Check
}

// Apply evaluates every check of the rule and returns the violated messages.
func (r FieldRule) Apply(rec *FieldRecord) []string {
	v := r.Value(rec)
	var msgs []string
	for _, c := range r.Checks {
		if !c.passes(v) {
			msgs = append(msgs, c.Message)
		}
	}
	return msgs
}

func (c Check) passes(v *string) bool {
	if c.Kind == CheckRequired {
		return v != nil && strings.TrimSpace(*v) != ""
	}
	if v == nil || *v == "" {
		return true
	}
	switch c.Kind {
	case CheckMaxLength:
		return utf8.RuneCountInString(*v) <= c.Max
	case CheckPattern:
		return c.Pattern.MatchString(*v)
	case CheckEmail:
		return emailPattern.MatchString(*v)
	}
	return true
}

func required(msg string) Check { return Check{Kind: CheckRequired, Message: msg} }

func maxLength(n int, msg string) Check { return Check{Kind: CheckMaxLength, Max: n, Message: msg} }

func pattern(expr, msg string) Check {
	return Check{Kind: CheckPattern, Pattern: regexp.MustCompile(expr), Message: msg}
}

func email(msg string) Check { return Check{Kind: CheckEmail, Message: msg} }

var emailPattern = regexp.MustCompile(
	`^[A-Za-z0-9.!#$%&'*+/=?^_{|}~-]+@[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*$`)

// ISOCurrencies is the set of currency codes accepted by the schema tier.
var ISOCurrencies = []string{
	"INR", "USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CHF", "CNY", "SGD",
	"NZD", "SEK", "NOK", "DKK", "PLN", "CZK", "HUF", "RON", "BGN",
}

const timestampPattern = `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`

// SchemaRules is the static per-field constraint table.
var SchemaRules = []FieldRule{
	{
		Field: "propertyTitle",
		Value: func(r *FieldRecord) *string { return r.PropertyTitle },
		Checks: []Check{
			required("Property title is mandatory"),
			maxLength(150, "Property title must be max 150 characters"),
		},
	},
	{
		Field: "description",
		Value: func(r *FieldRecord) *string { return r.Description },
		Checks: []Check{
			maxLength(500, "Description must be max 500 characters"),
		},
	},
	{
		Field: "propertyType",
		Value: func(r *FieldRecord) *string { return r.PropertyType },
		Checks: []Check{
			required("Property type is mandatory"),
			pattern(`^(`+strings.Join(PropertyTypes, "|")+`)$`,
				"Property type must be one of: "+strings.Join(PropertyTypes, ", ")),
		},
	},
	{
		Field: "addressLine1",
		Value: func(r *FieldRecord) *string { return r.AddressLine1 },
		Checks: []Check{
			required("Address Line 1 is mandatory"),
			maxLength(200, "Address Line 1 must be max 200 characters"),
		},
	},
	{
		Field: "city",
		Value: func(r *FieldRecord) *string { return r.City },
		Checks: []Check{
			required("City is mandatory"),
			maxLength(100, "City must be max 100 characters"),
		},
	},
	{
		Field: "state",
		Value: func(r *FieldRecord) *string { return r.State },
		Checks: []Check{
			required("State is mandatory"),
			maxLength(100, "State must be max 100 characters"),
		},
	},
	{
		Field: "country",
		Value: func(r *FieldRecord) *string { return r.Country },
		Checks: []Check{
			required("Country is mandatory"),
			maxLength(100, "Country must be max 100 characters"),
		},
	},
	{
		Field: "pincode",
		Value: func(r *FieldRecord) *string { return r.Pincode },
		Checks: []Check{
			required("Pincode is mandatory"),
			pattern(`^\d{5,10}$`, "Pincode must be 5-10 digits"),
		},
	},
	{
		Field: "latitude",
		Value: func(r *FieldRecord) *string { return r.Latitude },
		Checks: []Check{
			pattern(`^-?\d+(\.\d+)?$`, MsgLatitudeNumber),
		},
	},
	{
		Field: "longitude",
		Value: func(r *FieldRecord) *string { return r.Longitude },
		Checks: []Check{
			pattern(`^-?\d+(\.\d+)?$`, MsgLongitudeNumber),
		},
	},
	{
		Field: "hostId",
		Value: func(r *FieldRecord) *string { return r.HostID },
		Checks: []Check{
			required("Host ID is mandatory"),
			pattern(`^\d+$`, "Host ID must be a valid number"),
		},
	},
	{
		Field: "hostName",
		Value: func(r *FieldRecord) *string { return r.HostName },
		Checks: []Check{
			required("Host name is mandatory"),
			maxLength(100, "Host name must be max 100 characters"),
		},
	},
	{
		Field: "hostContact",
		Value: func(r *FieldRecord) *string { return r.HostContact },
		Checks: []Check{
			required("Host contact is mandatory"),
			pattern(`^\d{10,15}$`, "Host contact must be 10-15 digits"),
		},
	},
	{
		Field: "hostEmail",
		Value: func(r *FieldRecord) *string { return r.HostEmail },
		Checks: []Check{
			required("Host email is mandatory"),
			email("Invalid email format"),
			maxLength(100, "Host email must be max 100 characters"),
		},
	},
	{
		Field: "basePrice",
		Value: func(r *FieldRecord) *string { return r.BasePrice },
		Checks: []Check{
			required("Base price is mandatory"),
			pattern(`^\d+(\.\d+)?$`, MsgBasePriceNumber),
		},
	},
	{
		Field: "currency",
		Value: func(r *FieldRecord) *string { return r.Currency },
		Checks: []Check{
			required("Currency is mandatory"),
			pattern(`^(`+strings.Join(ISOCurrencies, "|")+`)$`, "Currency must be a valid ISO currency code"),
		},
	},
	{
		Field: "amenities",
		Value: func(r *FieldRecord) *string { return r.Amenities },
		Checks: []Check{
			maxLength(1000, "Amenities must be max 1000 characters"),
		},
	},
	{
		Field: "propertyUrl",
		Value: func(r *FieldRecord) *string { return r.PropertyURL },
		Checks: []Check{
			maxLength(500, "Property URL must be max 500 characters"),
			pattern(`^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})([/\w .-]*)*/?$`, "Property URL format may be invalid"),
		},
	},
	{
		Field: "status",
		Value: func(r *FieldRecord) *string { return r.Status },
		Checks: []Check{
			required("Status is mandatory"),
			pattern(`^(ACTIVE|INACTIVE|PENDING)$`, "Status must be one of: ACTIVE, INACTIVE, PENDING"),
		},
	},
	{
		Field: "createdAt",
		Value: func(r *FieldRecord) *string { return r.CreatedAt },
		Checks: []Check{
			pattern(timestampPattern, "Created date must be in format: yyyy-MM-dd HH:mm:ss"),
		},
	},
	{
		Field: "updatedAt",
		Value: func(r *FieldRecord) *string { return r.UpdatedAt },
		Checks: []Check{
			pattern(timestampPattern, "Updated date must be in format: yyyy-MM-dd HH:mm:ss"),
		},
	},
}
