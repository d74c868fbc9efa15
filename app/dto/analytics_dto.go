package dto

// CampaignPerformance compares responses with the campaign goal
type CampaignPerformance struct {
	Name      string `json:"name"`
	Responses int    `json:"responses"`
	Goal      int    `json:"goal"`
}

// ThemeCount is the number of campaigns sharing a theme
type ThemeCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DailyCount is the number of responses on one calendar day
type DailyCount struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RatingBucket counts ratings of one star value
type RatingBucket struct {
	Stars int    `json:"stars"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SatisfactionSummary is the rating histogram with its formatted average
type SatisfactionSummary struct {
	Buckets []RatingBucket `json:"buckets"`
	Total   int            `json:"total"`
	Average string         `json:"average"`
}

// AgeBucket counts respondents within an age range
type AgeBucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// AgeSummary is the non-empty age histogram
type AgeSummary struct {
	Buckets []AgeBucket `json:"buckets"`
	Total   int         `json:"total"`
}

// AdminDashboardResponse aggregates the whole platform
type AdminDashboardResponse struct {
	ActiveCompanies int                   `json:"activeCompanies"`
	TotalCampaigns  int                   `json:"totalCampaigns"`
	TotalVouchers   int                   `json:"totalVouchers"`
	TotalResponses  int                   `json:"totalResponses"`
	Performance     []CampaignPerformance `json:"performance"`
	Themes          []ThemeCount          `json:"themes"`
	ResponsesPerDay []DailyCount          `json:"responsesPerDay"`
}

// CompanyDashboardResponse aggregates the campaigns of one company
type CompanyDashboardResponse struct {
	Company        Company             `json:"company"`
	TotalCampaigns int                 `json:"totalCampaigns"`
	TotalResponses int                 `json:"totalResponses"`
	Satisfaction   SatisfactionSummary `json:"satisfaction"`
	Ages           AgeSummary          `json:"ages"`
}
