package dto

// SpendingRequest asks for summed ad spend over a named date range.
// Date is the chat menu index, 1 through 6.
type SpendingRequest struct {
	Phone string `json:"phone" validate:"required"`
	Date  int    `json:"date" validate:"required,min=1,max=6"`
}

// SpendingResponse carries the formatted spend answer for chat.
type SpendingResponse struct {
	Name     string   `json:"name"`
	Spend    string   `json:"spend"`
	Warnings []string `json:"warnings,omitempty"`
}

// CampaignsRequest lists an account's active budget groups.
type CampaignsRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// CampaignsResponse returns the ordinal-indexed group listing the chat
// menu is built from.
type CampaignsResponse struct {
	Name      string   `json:"name"`
	Budget    string   `json:"budget"`
	Campaigns []string `json:"campaigns"`
}

// PauseBudgetRequest pauses one budget group by its 1-based listing index
// for the duration code. An index past the end of the listing pauses all
// groups.
type PauseBudgetRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Campaign int    `json:"campaign" validate:"required,min=1"`
	Duration int    `json:"duration" validate:"required,min=1,max=4"`
}

// PauseAdsRequest pauses every campaign via the status mechanism.
type PauseAdsRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Duration int    `json:"duration" validate:"required,min=1,max=4"`
}

// PauseResponse reports what was paused and when it reverts.
type PauseResponse struct {
	Name   string   `json:"name"`
	Paused []string `json:"paused,omitempty"`
	Date   string   `json:"date"`
}

// EnableAdsRequest re-enables every campaign immediately.
type EnableAdsRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// EnableAdsResponse confirms the account the ads were enabled for.
type EnableAdsResponse struct {
	Name string `json:"name"`
}
