package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an accessory record.
type Status string

const (
	StatusOnStock     Status = "on_stock"
	StatusReserve     Status = "reserve"
	StatusIssued      Status = "issued"
	StatusMaintenance Status = "maintenance"
	StatusRetired     Status = "retired"
)

// ParseStatus validates a client-supplied status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOnStock, StatusReserve, StatusIssued, StatusMaintenance, StatusRetired:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Suffix is the short tag appended to derived barcodes.
func (s Status) Suffix() string {
	switch s {
	case StatusOnStock:
		return "STK"
	case StatusReserve:
		return "RSV"
	case StatusIssued:
		return "ISS"
	case StatusMaintenance:
		return "MNT"
	case StatusRetired:
		return "RET"
	}
	return "UNK"
}

// AuditEntry is one line of a record's embedded audit trail.
type AuditEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Actor       string    `json:"actor"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
}

// AuditTrail is the ordered, append-only sequence of audit entries stored
// as a jsonb column on the record itself. Entries are never reordered or
// pruned.
type AuditTrail []AuditEntry

func (t AuditTrail) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	return json.Marshal(t)
}

func (t *AuditTrail) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	}
	return errors.New("audit trail: unsupported column type")
}

// StringSlice stores a list of strings (attachment URLs) as jsonb.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return errors.New("string slice: unsupported column type")
}

// AccessoryRecord is the unit of the quantity ledger.
//
// A canonical (stock) record has no LineageID. A derived record is created
// by a split and carries LineageID back to its source; the reference is a
// plain relation; the source may be deleted independently.
// Quantity and Status only ever change through the ledger service, which
// appends exactly one audit entry per mutated record.
type AccessoryRecord struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LineageID *uuid.UUID `gorm:"type:uuid;index"`

	AssetType    string `gorm:"index;not null"`
	Brand        string
	Model        string
	SerialNumber string
	Barcode      string `gorm:"uniqueIndex;not null"`
	Location     string
	Comments     string
	Attachments  StringSlice     `gorm:"type:jsonb;default:'[]'"`
	PurchaseCost decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	Quantity int     `gorm:"not null;check:quantity >= 0"`
	Status   Status  `gorm:"not null;default:'on_stock';index"`
	Borrower *string // meaningful only when Status is reserve or issued

	AuditTrail AuditTrail `gorm:"type:jsonb;default:'[]'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AccessoryRecord) TableName() string { return "accessory_records" }

// IsDerived reports whether the record was created by a split.
func (r *AccessoryRecord) IsDerived() bool { return r.LineageID != nil }

// AppendAudit adds one entry to the embedded trail.
func (r *AccessoryRecord) AppendAudit(actor, action, description string) {
	r.AuditTrail = append(r.AuditTrail, AuditEntry{
		Timestamp:   time.Now().UTC(),
		Actor:       actor,
		Action:      action,
		Description: description,
	})
}

// BorrowerOrNA renders the borrower for audit descriptions.
func (r *AccessoryRecord) BorrowerOrNA() string {
	if r.Borrower == nil || *r.Borrower == "" {
		return "N/A"
	}
	return *r.Borrower
}
