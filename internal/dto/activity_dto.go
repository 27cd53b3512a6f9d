package dto

type ActivityEventResponse struct {
	ID        string  `json:"id"`
	Actor     string  `json:"actor"`
	Action    string  `json:"action"`
	TargetID  *string `json:"target_id,omitempty"`
	Detail    string  `json:"detail"`
	CreatedAt string  `json:"created_at"`
}

type ActivityFilter struct {
	Actor    string `form:"actor"`
	Action   string `form:"action"`
	TargetID string `form:"target_id"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type ActivityListResponse struct {
	Data  []ActivityEventResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
