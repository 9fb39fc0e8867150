package dto

// StatisticsRequest asks for the combined ads and call metric bundle over
// a named date range.
type StatisticsRequest struct {
	Phone string `json:"phone" validate:"required"`
	Date  int    `json:"date" validate:"required,min=1,max=6"`
}

// StatisticsResponse is the formatted metric bundle rendered in chat.
type StatisticsResponse struct {
	Name        string   `json:"name"`
	DateName    string   `json:"date_name"`
	Spend       string   `json:"spend"`
	Clicks      int64    `json:"clicks"`
	Calls       int64    `json:"calls"`
	Answered    int64    `json:"answered"`
	Missed      int64    `json:"missed"`
	CostPerCall string   `json:"cost_per_call"`
	ClickToCall string   `json:"click_to_call"`
	Warnings    []string `json:"warnings,omitempty"`
}
