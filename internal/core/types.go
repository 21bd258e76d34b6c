package core

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the literal format used for spreadsheet timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// ColumnCount is the number of positional columns read from every row.
const ColumnCount = 22

// Column positions within a data row.
const (
	ColPropertyID = iota
	ColPropertyTitle
	ColDescription
	ColPropertyType
	ColAddressLine1
	ColCity
	ColState
	ColCountry
	ColPincode
	ColLatitude
	ColLongitude
	ColHostID
	ColHostName
	ColHostContact
	ColHostEmail
	ColBasePrice
	ColCurrency
	ColAmenities
	ColPropertyURL
	ColStatus
	ColCreatedAt
	ColUpdatedAt
)

// FieldRecord is one extracted row. Every field is kept as text; typing is
// deferred to conversion. A nil field means the cell was absent.
type FieldRecord struct {
	PropertyID    *string `json:"propertyId"`
	PropertyTitle *string `json:"propertyTitle"`
	Description   *string `json:"description"`
	PropertyType  *string `json:"propertyType"`
	AddressLine1  *string `json:"addressLine1"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	Country       *string `json:"country"`
	Pincode       *string `json:"pincode"`
	Latitude      *string `json:"latitude"`
	Longitude     *string `json:"longitude"`
	HostID        *string `json:"hostId"`
	HostName      *string `json:"hostName"`
	HostContact   *string `json:"hostContact"`
	HostEmail     *string `json:"hostEmail"`
	BasePrice     *string `json:"basePrice"`
	Currency      *string `json:"currency"`
	Amenities     *string `json:"amenities"`
	PropertyURL   *string `json:"propertyUrl"`
	Status        *string `json:"status"`
	CreatedAt     *string `json:"createdAt"`
	UpdatedAt     *string `json:"updatedAt"`
}

// RowOutcome is the per-row result recorded in the batch audit.
type RowOutcome struct {
	RowNumber      int     `json:"rowNumber"`
	Success        bool    `json:"success"`
	ErrorMessage   *string `json:"errorMessage,omitempty"`
	WarningMessage *string `json:"warningMessage,omitempty"`
}

// Property is the persisted listing entity.
type Property struct {
	ID           *int64    `json:"propertyId,omitempty"`
	Title        string    `json:"propertyTitle"`
	Description  string    `json:"description"`
	PropertyType string    `json:"propertyType"`
	AddressLine1 string    `json:"addressLine1"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Country      string    `json:"country"`
	Pincode      string    `json:"pincode"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	HostID       *int64    `json:"hostId,omitempty"`
	HostName     string    `json:"hostName"`
	HostContact  string    `json:"hostContact"`
	HostEmail    string    `json:"hostEmail"`
	BasePrice    *float64  `json:"basePrice,omitempty"`
	Currency     string    `json:"currency"`
	Amenities    []string  `json:"amenities"`
	PropertyURL  string    `json:"propertyUrl"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuditState is the lifecycle state of a batch audit.
type AuditState string

const (
	StateProcessing AuditState = "PROCESSING"
	StateCompleted  AuditState = "COMPLETED"
	StateFailed     AuditState = "FAILED"
)

// ParseAuditState returns the audit state matching s (case-insensitive).
func ParseAuditState(s string) (AuditState, bool) {
	switch AuditState(strings.ToUpper(strings.TrimSpace(s))) {
	case StateProcessing:
		return StateProcessing, true
	case StateCompleted:
		return StateCompleted, true
	case StateFailed:
		return StateFailed, true
	}
	return "", false
}

// BatchAudit tracks one upload from creation to its terminal state.
type BatchAudit struct {
	ID          string             `json:"uploadId"`
	FileName    string             `json:"fileName"`
	SubmittedBy string             `json:"uploadedBy"`
	Timestamp   time.Time          `json:"timestamp"`
	State       AuditState         `json:"status"`
	Outcomes    map[int]RowOutcome `json:"rowResults"`
	TotalRows   int                `json:"totalRows"`
	SuccessRows int                `json:"successRows"`
	FailedRows  int                `json:"failedRows"`
	WarningRows int                `json:"warningRows"`
}

// UploadRequest is the input to a single ingestion run.
type UploadRequest struct {
	FileName    string
	SubmittedBy string
	Data        []byte
}

// UploadSummary is returned to the caller once a run completes.
type UploadSummary struct {
	UploadID    string     `json:"uploadId"`
	FileName    string     `json:"fileName"`
	TotalRows   int        `json:"totalRows"`
	SuccessRows int        `json:"successRows"`
	FailedRows  int        `json:"failedRows"`
	WarningRows int        `json:"warningRows"`
	Status      AuditState `json:"status"`
	Message     string     `json:"message"`
}

// SummaryFromAudit builds the caller-facing summary of a finished audit.
func SummaryFromAudit(a *BatchAudit) *UploadSummary {
	return &UploadSummary{
		UploadID:    a.ID,
		FileName:    a.FileName,
		TotalRows:   a.TotalRows,
		SuccessRows: a.SuccessRows,
		FailedRows:  a.FailedRows,
		WarningRows: a.WarningRows,
		Status:      a.State,
		Message: fmt.Sprintf("Processed %d rows: %d success, %d failed, %d warnings",
			a.TotalRows, a.SuccessRows, a.FailedRows, a.WarningRows),
	}
}
