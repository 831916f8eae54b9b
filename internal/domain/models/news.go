package models

// NewsArticle is a market or company news headline.
type NewsArticle struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Image    string `json:"image"`
	Related  string `json:"related,omitempty"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// CompanyProfile is the basic profile of a listed company.
type CompanyProfile struct {
	Country          string  `json:"country"`
	Currency         string  `json:"currency"`
	Exchange         string  `json:"exchange"`
	FinnhubIndustry  string  `json:"finnhubIndustry"`
	IPO              string  `json:"ipo"`
	Logo             string  `json:"logo"`
	MarketCap        float64 `json:"marketCapitalization"`
	Name             string  `json:"name"`
	ShareOutstanding float64 `json:"shareOutstanding"`
	Ticker           string  `json:"ticker"`
	WebURL           string  `json:"weburl"`
}

// SocialSentiment is the per-source mention history for one symbol.
type SocialSentiment struct {
	Symbol  string                 `json:"symbol"`
	Reddit  []SocialSentimentEntry `json:"reddit"`
	Twitter []SocialSentimentEntry `json:"twitter"`
}

// SocialSentimentEntry is one hourly bucket of mentions.
type SocialSentimentEntry struct {
	AtTime          string  `json:"atTime"`
	Mention         int     `json:"mention"`
	PositiveMention int     `json:"positiveMention"`
	NegativeMention int     `json:"negativeMention"`
	PositiveScore   float64 `json:"positiveScore"`
	NegativeScore   float64 `json:"negativeScore"`
	Score           float64 `json:"score"`
}

// MarketStatus is the trading state of one regional market.
type MarketStatus struct {
	MarketType       string `json:"market_type"`
	Region           string `json:"region"`
	PrimaryExchanges string `json:"primary_exchanges"`
	LocalOpen        string `json:"local_open"`
	LocalClose       string `json:"local_close"`
	CurrentStatus    string `json:"current_status"`
	Notes            string `json:"notes,omitempty"`
}
