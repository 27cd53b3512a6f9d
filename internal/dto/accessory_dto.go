package dto

import "github.com/shopspring/decimal"

type CreateAccessoryRequest struct {
	AssetType    string          `json:"asset_type" validate:"required"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	SerialNumber string          `json:"serial_number"`
	Barcode      string          `json:"barcode"` // generated when empty
	Location     string          `json:"location"`
	Comments     string          `json:"comments"`
	Attachments  []string        `json:"attachments"`
	PurchaseCost decimal.Decimal `json:"purchase_cost" validate:"min=0"`
	Quantity     int             `json:"quantity" validate:"required,gt=0"`
}

// UpdateAccessoryRequest covers descriptive fields only. Quantity and status
// move exclusively through the ledger endpoints.
type UpdateAccessoryRequest struct {
	AssetType    *string          `json:"asset_type"`
	Brand        *string          `json:"brand"`
	Model        *string          `json:"model"`
	SerialNumber *string          `json:"serial_number"`
	Location     *string          `json:"location"`
	Comments     *string          `json:"comments"`
	Attachments  []string         `json:"attachments"`
	PurchaseCost *decimal.Decimal `json:"purchase_cost"`
}

type AccessoryResponse struct {
	ID           string          `json:"id"`
	LineageID    *string         `json:"lineage_id,omitempty"`
	AssetType    string          `json:"asset_type"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	SerialNumber string          `json:"serial_number"`
	Barcode      string          `json:"barcode"`
	Location     string          `json:"location"`
	Comments     string          `json:"comments"`
	Attachments  []string        `json:"attachments"`
	PurchaseCost decimal.Decimal `json:"purchase_cost"`
	Quantity     int             `json:"quantity"`
	Status       string          `json:"status"`
	Borrower     *string         `json:"borrower,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

type AccessoryFilter struct {
	Status    string `form:"status"`
	AssetType string `form:"asset_type"`
	Location  string `form:"location"`
	Search    string `form:"search"` // matches brand / model / serial / barcode
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	SortBy    string `form:"sort_by"`
	SortDir   string `form:"sort_dir"` // asc | desc
}

type AccessoryListResponse struct {
	Data  []AccessoryResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

type AuditEntryResponse struct {
	Timestamp   string `json:"timestamp"`
	Actor       string `json:"actor"`
	Action      string `json:"action"`
	Description string `json:"description"`
}
