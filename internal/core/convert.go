package core

// convert.go maps validated records to persistable properties.
//
// Numeric fields are parsed a second time here. A value that fails to parse
// is logged and left unset; it never fails the row. Only an unexpected panic
// turns into a conversion error, which the orchestrator records by demoting
// the row.

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// ConversionErrorPrefix starts the message recorded for a demoted row.
const ConversionErrorPrefix = "Error converting to property: "

// ConvertRow converts a record that passed validation into a Property.
// now is used as the update time and as the creation time when the record
// carries no well-formed created timestamp.
func ConvertRow(rec *FieldRecord, now time.Time) (*Property, error) {
	return convertRow(slog.Default(), rec, now)
}

func convertRow(logger *slog.Logger, rec *FieldRecord, now time.Time) (p *Property, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("%v", r)
		}
	}()

	p = &Property{
		Title:        deref(rec.PropertyTitle),
		Description:  deref(rec.Description),
		PropertyType: deref(rec.PropertyType),
		AddressLine1: deref(rec.AddressLine1),
		City:         deref(rec.City),
		State:        deref(rec.State),
		Country:      deref(rec.Country),
		Pincode:      deref(rec.Pincode),
		HostName:     deref(rec.HostName),
		HostContact:  deref(rec.HostContact),
		HostEmail:    deref(rec.HostEmail),
		Currency:     strings.ToUpper(deref(rec.Currency)),
		Amenities:    ParseAmenities(deref(rec.Amenities)),
		PropertyURL:  deref(rec.PropertyURL),
		Status:       deref(rec.Status),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	p.ID = parseInt(logger, "property id", rec.PropertyID)
	p.HostID = parseInt(logger, "host id", rec.HostID)
	p.Latitude = parseFloat(logger, "latitude", rec.Latitude)
	p.Longitude = parseFloat(logger, "longitude", rec.Longitude)
	p.BasePrice = parseFloat(logger, "base price", rec.BasePrice)

	if s, ok := present(rec.CreatedAt); ok {
		if t, err := time.Parse(TimestampLayout, s); err == nil {
			p.CreatedAt = t
		}
	}

	return p, nil
}

// ParseAmenities splits amenity text written either as a bracketed list of
// quoted tokens (["WiFi","AC"]) or as bare comma-separated tokens (WiFi,AC).
// Tokens are trimmed and empty tokens dropped. Blank input yields an empty,
// non-nil list.
func ParseAmenities(s string) []string {
	clean := strings.TrimSpace(s)
	if strings.HasPrefix(clean, "[") && strings.HasSuffix(clean, "]") {
		clean = strings.ReplaceAll(clean[1:len(clean)-1], `"`, "")
	}

	out := []string{}
	for _, tok := range strings.Split(clean, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func parseInt(logger *slog.Logger, field string, v *string) *int64 {
	s, ok := present(v)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		logger.Warn("invalid "+field, "value", s)
		return nil
	}
	return &n
}

func parseFloat(logger *slog.Logger, field string, v *string) *float64 {
	s, ok := present(v)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		logger.Warn("invalid "+field, "value", s)
		return nil
	}
	return &f
}
