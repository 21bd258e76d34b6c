package core

// validation.go provides row-level validation of extracted records.
//
// Validation happens in two tiers, and both always run so every problem with
// a row surfaces at once:
//  1. Schema tier: the SchemaRules table (presence, length, pattern)
//  2. Business tier: ranges and consistency checks that a static per-field
//     pattern cannot express
//
// Errors block the row. Warnings are informational and never change the
// outcome. Each list is joined with "; " into a single message.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Business tier messages.
const (
	MsgLatitudeRange   = "Latitude must be between -90 and 90"
	MsgLatitudeNumber  = "Latitude must be a valid number"
	MsgLongitudeRange  = "Longitude must be between -180 and 180"
	MsgLongitudeNumber = "Longitude must be a valid number"
	MsgBasePriceRange  = "Base price must be greater than 0"
	MsgBasePriceNumber = "Base price must be a valid number"

	WarnCurrencyNotPreferred = "Currency %s is not in preferred list"
	WarnPropertyURLScheme    = "Property URL should start with http:// or https://"
	WarnHostIDEmpty          = "Host ID is empty but Host Name is provided"
)

// PreferredCurrencies is the subset of ISOCurrencies that raises no warning.
var PreferredCurrencies = []string{"INR", "USD", "EUR", "GBP", "CAD", "AUD"}

// ValidationError represents a single validation problem for a field.
type ValidationError struct {
	Field   string // Field name, empty for row-level problems
	Value   string // The offending value
	Message string // Human-readable message
}

func (e ValidationError) Error() string {
	return e.Message
}

// RowValidator validates extracted records against a schema rule table and
// the business rules.
type RowValidator struct {
	rules     []FieldRule
	preferred map[string]bool
}

// NewRowValidator creates a validator for the given schema rules.
// A nil rule table uses SchemaRules.
func NewRowValidator(rules []FieldRule) *RowValidator {
	if rules == nil {
		rules = SchemaRules
	}
	preferred := make(map[string]bool, len(PreferredCurrencies))
	for _, c := range PreferredCurrencies {
		preferred[c] = true
	}
	return &RowValidator{rules: rules, preferred: preferred}
}

// Validate runs both tiers and returns the outcome for the row.
func (v *RowValidator) Validate(rec *FieldRecord, rowNumber int) RowOutcome {
	errs := v.SchemaErrors(rec)
	bizErrs, warns := v.BusinessChecks(rec)
	errs = multierror.Append(errs, bizErrs.WrappedErrors()...)

	out := RowOutcome{RowNumber: rowNumber, Success: errs.Len() == 0}
	out.ErrorMessage = joined(errs)
	out.WarningMessage = joined(warns)
	return out
}

// SchemaErrors evaluates the rule table. The result is never nil.
func (v *RowValidator) SchemaErrors(rec *FieldRecord) *multierror.Error {
	errs := newMessageList()
	for _, rule := range v.rules {
		for _, msg := range rule.Apply(rec) {
			errs = multierror.Append(errs, ValidationError{
				Field:   rule.Field,
				Value:   deref(rule.Value(rec)),
				Message: msg,
			})
		}
	}
	return errs
}

// BusinessChecks evaluates the business tier, returning blocking errors and
// warnings. Neither result is nil.
func (v *RowValidator) BusinessChecks(rec *FieldRecord) (errs, warns *multierror.Error) {
	errs, warns = newMessageList(), newMessageList()

	if cur := deref(rec.Currency); strings.TrimSpace(cur) != "" && !v.preferred[strings.ToUpper(cur)] {
		warns = multierror.Append(warns, ValidationError{
			Field:   "currency",
			Value:   cur,
			Message: fmt.Sprintf(WarnCurrencyNotPreferred, cur),
		})
	}

	errs = checkRange(errs, "latitude", rec.Latitude, -90, 90, MsgLatitudeRange, MsgLatitudeNumber)
	errs = checkRange(errs, "longitude", rec.Longitude, -180, 180, MsgLongitudeRange, MsgLongitudeNumber)

	if price, ok := present(rec.BasePrice); ok {
		f, err := strconv.ParseFloat(price, 64)
		switch {
		case err != nil:
			errs = multierror.Append(errs, ValidationError{Field: "basePrice", Value: price, Message: MsgBasePriceNumber})
		case f <= 0:
			errs = multierror.Append(errs, ValidationError{Field: "basePrice", Value: price, Message: MsgBasePriceRange})
		}
	}

	if u, ok := present(rec.PropertyURL); ok {
		lower := strings.ToLower(u)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			warns = multierror.Append(warns, ValidationError{Field: "propertyUrl", Value: u, Message: WarnPropertyURLScheme})
		}
	}

	if rec.HostID != nil && rec.HostName != nil &&
		strings.TrimSpace(*rec.HostID) == "" && strings.TrimSpace(*rec.HostName) != "" {
		warns = multierror.Append(warns, ValidationError{Field: "hostId", Message: WarnHostIDEmpty})
	}

	return errs, warns
}

func checkRange(errs *multierror.Error, field string, v *string, lo, hi float64, rangeMsg, numberMsg string) *multierror.Error {
	s, ok := present(v)
	if !ok {
		return errs
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return multierror.Append(errs, ValidationError{Field: field, Value: s, Message: numberMsg})
	}
	if f < lo || f > hi {
		return multierror.Append(errs, ValidationError{Field: field, Value: s, Message: rangeMsg})
	}
	return errs
}

// newMessageList returns an empty error list rendered as "; "-joined messages.
func newMessageList() *multierror.Error {
	return &multierror.Error{ErrorFormat: joinMessages}
}

func joinMessages(es []error) string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func joined(e *multierror.Error) *string {
	if e.Len() == 0 {
		return nil
	}
	s := e.Error()
	return &s
}

// present returns the trimmed value and whether it is non-blank.
func present(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.TrimSpace(*v)
	return s, s != ""
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
