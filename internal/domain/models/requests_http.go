package models

// Requests for the public HTTP endpoints. Defined in domain for consistency and reuse.

type QuotesRequest struct {
	Index string `param:"index" json:"index" validate:"required,max=32"`
}

type QuotesStreamRequest struct {
	Index    string `param:"index" json:"index" validate:"required,max=32"`
	Interval int    `query:"interval" json:"interval" default:"15" validate:"gte=5,lte=300"`
}

type MarketNewsRequest struct {
	Category string `query:"category" json:"category" default:"general" validate:"oneof=general forex crypto merger"`
}

type CompanyNewsRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required,max=16"`
	TimeFrom string `query:"time_from" json:"time_from"`
	TimeTo   string `query:"time_to" json:"time_to"`
}

type CompanyProfileRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=16"`
}

type SocialSentimentRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required,max=16"`
	TimeFrom string `query:"time_from" json:"time_from"`
}
