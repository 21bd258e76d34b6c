package core

import (
	"fmt"
	"log/slog"
	"strings"
)

// ExtractionFailedMessage is recorded for rows whose cells could not be read.
const ExtractionFailedMessage = "row data extraction failed"

// ExtractRow maps the positional cells of one data row to a FieldRecord.
// Cells beyond the row's length are treated as absent. It returns nil if
// extraction fails; rowNumber is the 1-based display row used in logs.
func ExtractRow(cells []*Cell, rowNumber int) *FieldRecord {
	return extractRow(slog.Default(), cells, rowNumber)
}

func extractRow(logger *slog.Logger, cells []*Cell, rowNumber int) (rec *FieldRecord) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("row extraction failed", "row", rowNumber, "error", fmt.Sprint(r))
			rec = nil
		}
	}()

	at := func(col int) *string {
		if col < len(cells) {
			return NormalizeCell(cells[col])
		}
		return nil
	}

	return &FieldRecord{
		PropertyID:    at(ColPropertyID),
		PropertyTitle: at(ColPropertyTitle),
		Description:   at(ColDescription),
		PropertyType:  closedSet(logger, "property type", at(ColPropertyType), rowNumber, ParsePropertyType),
		AddressLine1:  at(ColAddressLine1),
		City:          at(ColCity),
		State:         at(ColState),
		Country:       at(ColCountry),
		Pincode:       at(ColPincode),
		Latitude:      at(ColLatitude),
		Longitude:     at(ColLongitude),
		HostID:        at(ColHostID),
		HostName:      at(ColHostName),
		HostContact:   at(ColHostContact),
		HostEmail:     at(ColHostEmail),
		BasePrice:     at(ColBasePrice),
		Currency:      at(ColCurrency),
		Amenities:     at(ColAmenities),
		PropertyURL:   at(ColPropertyURL),
		Status:        closedSet(logger, "status", at(ColStatus), rowNumber, ParseStatus),
		CreatedAt:     at(ColCreatedAt),
		UpdatedAt:     at(ColUpdatedAt),
	}
}

// closedSet replaces a raw token with its canonical spelling. Blank and
// unrecognized tokens become nil; the latter are logged.
func closedSet(logger *slog.Logger, field string, raw *string, rowNumber int, parse func(string) Token) *string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	tok := parse(*raw)
	if !tok.Recognized {
		logger.Warn("unrecognized "+field+" value", "row", rowNumber, "value", tok.Raw)
		return nil
	}
	return &tok.Value
}
