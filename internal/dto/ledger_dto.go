package dto

// ActionRequest is the user intent behind a split: take amount units out of
// the target record into a new record with the given status.
type ActionRequest struct {
	Amount       int    `json:"amount" validate:"required,gt=0"`
	TargetStatus string `json:"target_status" validate:"required"`
	Borrower     string `json:"borrower"` // required for reserve / issued targets
}

type SplitResponse struct {
	NewRecordID    string `json:"new_record_id"`
	SourceQuantity int    `json:"source_quantity"`
}

type AdjustResponse struct {
	Removed  bool `json:"removed"`
	Quantity int  `json:"quantity"` // remaining quantity, 0 when removed
}

type ReturnResponse struct {
	SourceID       string `json:"source_id"`
	SourceQuantity int    `json:"source_quantity"`
}
