package models

import "time"

// DataQuality tags how much a Snapshot can be trusted.
type DataQuality string

const (
	QualityLive        DataQuality = "live"
	QualityEstimated   DataQuality = "estimated"
	QualityUnavailable DataQuality = "unavailable"
)

// DataSource tags whether values came from a provider or were generated.
type DataSource string

const (
	SourceLive      DataSource = "live"
	SourceSynthetic DataSource = "synthetic"
)

// Snapshot is the canonical, fully-keyed record for one symbol. Every field is
// always serialized; absent values are null. A Snapshot is never mutated after
// the resolver returns it.
type Snapshot struct {
	Symbol string `json:"symbol"`
	Market Market `json:"market"`

	// Identity / profile.
	Name        *string  `json:"name"`
	Sector      *string  `json:"sector"`
	Industry    *string  `json:"industry"`
	Description *string  `json:"description"`
	Website     *string  `json:"website"`
	Employees   *float64 `json:"employees"`
	Currency    *string  `json:"currency"`
	Exchange    *string  `json:"exchange"`

	// Price.
	LastTradedPrice     *float64 `json:"last_traded_price"`
	OneDayChange        *float64 `json:"one_day_change"`
	OneDayChangePercent *float64 `json:"one_day_change_percent"`
	DayHigh             *float64 `json:"day_high"`
	DayLow              *float64 `json:"day_low"`
	OpenPrice           *float64 `json:"open_price"`
	PreviousClose       *float64 `json:"previous_close"`
	FiftyTwoWeekHigh    *float64 `json:"fifty_two_week_high"`
	FiftyTwoWeekLow     *float64 `json:"fifty_two_week_low"`
	Volume              *float64 `json:"volume"`
	AvgVolume           *float64 `json:"avg_volume"`
	MarketCap           *float64 `json:"market_cap"`

	// Valuation.
	PERatio       *float64 `json:"pe_ratio"`
	PEGRatio      *float64 `json:"peg_ratio"`
	BookValue     *float64 `json:"book_value"`
	PBRatio       *float64 `json:"pb_ratio"`
	EPS           *float64 `json:"eps"`
	DividendYield *float64 `json:"dividend_yield"` // percent
	FaceValue     *float64 `json:"face_value"`

	// Profitability (percent).
	ROE             *float64 `json:"roe"`
	ROA             *float64 `json:"roa"`
	ROCE            *float64 `json:"roce"`
	GrossMargin     *float64 `json:"gross_margin"`
	OperatingMargin *float64 `json:"operating_margin"`
	NetMargin       *float64 `json:"net_margin"`
	ProfitMargin    *float64 `json:"profit_margin"`

	// Financial health. DebtToEquity is a plain ratio (0.41).
	DebtToEquity *float64 `json:"debt_to_equity"`
	CurrentRatio *float64 `json:"current_ratio"`
	QuickRatio   *float64 `json:"quick_ratio"`
	Beta         *float64 `json:"beta"`

	// Income statement.
	Revenue         *float64 `json:"revenue"`
	RevenueGrowth   *float64 `json:"revenue_growth"`  // percent
	EarningsGrowth  *float64 `json:"earnings_growth"` // percent
	GrossProfit     *float64 `json:"gross_profit"`
	OperatingIncome *float64 `json:"operating_income"`
	NetIncome       *float64 `json:"net_income"`
	EBITDA          *float64 `json:"ebitda"`

	// Balance sheet and cash flow.
	TotalAssets       *float64 `json:"total_assets"`
	TotalLiabilities  *float64 `json:"total_liabilities"`
	TotalDebt         *float64 `json:"total_debt"`
	TotalEquity       *float64 `json:"total_equity"`
	Cash              *float64 `json:"cash"`
	FreeCashFlow      *float64 `json:"free_cash_flow"`
	OperatingCashFlow *float64 `json:"operating_cash_flow"`

	// Analyst.
	TargetPrice    *float64 `json:"target_price"`
	Recommendation *string  `json:"recommendation"`

	// Shareholding (percent).
	Promoters  *float64 `json:"promoters"`
	FII        *float64 `json:"fii"`
	DII        *float64 `json:"dii"`
	Public     *float64 `json:"public"`
	Government *float64 `json:"government"`

	// Technical levels.
	FiftyDMA      *float64 `json:"fifty_dma"`
	TwoHundredDMA *float64 `json:"two_hundred_dma"`
	RSI           *float64 `json:"rsi"`
	MACD          *float64 `json:"macd"`
	Support       *float64 `json:"support"`
	Resistance    *float64 `json:"resistance"`

	// Crypto supply.
	CirculatingSupply *float64 `json:"circulating_supply"`
	TotalSupply       *float64 `json:"total_supply"`
	MaxSupply         *float64 `json:"max_supply"`

	// Provenance.
	DataQuality DataQuality `json:"data_quality"`
	DataSource  DataSource  `json:"data_source"`
	Sources     []string    `json:"sources"`
	FetchedAt   time.Time   `json:"fetched_at"`
}

// Number returns the value of a numeric field, or nil.
func (s *Snapshot) Number(f Field) *float64 {
	if ref := s.numberRef(f); ref != nil {
		return *ref
	}
	return nil
}

// SetNumber assigns a numeric field. Unknown fields are ignored.
func (s *Snapshot) SetNumber(f Field, v float64) {
	if ref := s.numberRef(f); ref != nil {
		*ref = &v
	}
}

// Text returns the value of a string field, or nil.
func (s *Snapshot) Text(f Field) *string {
	if ref := s.textRef(f); ref != nil {
		return *ref
	}
	return nil
}

// SetText assigns a string field. Unknown fields are ignored.
func (s *Snapshot) SetText(f Field, v string) {
	if ref := s.textRef(f); ref != nil {
		*ref = &v
	}
}

// Price returns the last traded price or 0.
func (s *Snapshot) Price() float64 {
	if s == nil || s.LastTradedPrice == nil {
		return 0
	}
	return *s.LastTradedPrice
}

func (s *Snapshot) numberRef(f Field) **float64 {
	switch f {
	case FieldPrice:
		return &s.LastTradedPrice
	case FieldChange:
		return &s.OneDayChange
	case FieldChangePercent:
		return &s.OneDayChangePercent
	case FieldDayHigh:
		return &s.DayHigh
	case FieldDayLow:
		return &s.DayLow
	case FieldOpen:
		return &s.OpenPrice
	case FieldPreviousClose:
		return &s.PreviousClose
	case FieldFiftyTwoWeekHigh:
		return &s.FiftyTwoWeekHigh
	case FieldFiftyTwoWeekLow:
		return &s.FiftyTwoWeekLow
	case FieldVolume:
		return &s.Volume
	case FieldAvgVolume:
		return &s.AvgVolume
	case FieldMarketCap:
		return &s.MarketCap
	case FieldPE:
		return &s.PERatio
	case FieldPEG:
		return &s.PEGRatio
	case FieldBookValue:
		return &s.BookValue
	case FieldPB:
		return &s.PBRatio
	case FieldEPS:
		return &s.EPS
	case FieldDividendYield:
		return &s.DividendYield
	case FieldFaceValue:
		return &s.FaceValue
	case FieldROE:
		return &s.ROE
	case FieldROA:
		return &s.ROA
	case FieldROCE:
		return &s.ROCE
	case FieldGrossMargin:
		return &s.GrossMargin
	case FieldOperatingMargin:
		return &s.OperatingMargin
	case FieldNetMargin:
		return &s.NetMargin
	case FieldProfitMargin:
		return &s.ProfitMargin
	case FieldDebtToEquity:
		return &s.DebtToEquity
	case FieldCurrentRatio:
		return &s.CurrentRatio
	case FieldQuickRatio:
		return &s.QuickRatio
	case FieldBeta:
		return &s.Beta
	case FieldRevenue:
		return &s.Revenue
	case FieldRevenueGrowth:
		return &s.RevenueGrowth
	case FieldEarningsGrowth:
		return &s.EarningsGrowth
	case FieldGrossProfit:
		return &s.GrossProfit
	case FieldOperatingIncome:
		return &s.OperatingIncome
	case FieldNetIncome:
		return &s.NetIncome
	case FieldEBITDA:
		return &s.EBITDA
	case FieldTotalAssets:
		return &s.TotalAssets
	case FieldTotalLiabilities:
		return &s.TotalLiabilities
	case FieldTotalDebt:
		return &s.TotalDebt
	case FieldTotalEquity:
		return &s.TotalEquity
	case FieldCash:
		return &s.Cash
	case FieldFreeCashFlow:
		return &s.FreeCashFlow
	case FieldOperatingCashFlow:
		return &s.OperatingCashFlow
	case FieldTargetPrice:
		return &s.TargetPrice
	case FieldPromoters:
		return &s.Promoters
	case FieldFII:
		return &s.FII
	case FieldDII:
		return &s.DII
	case FieldPublic:
		return &s.Public
	case FieldGovernment:
		return &s.Government
	case FieldFiftyDMA:
		return &s.FiftyDMA
	case FieldTwoHundredDMA:
		return &s.TwoHundredDMA
	case FieldRSI:
		return &s.RSI
	case FieldMACD:
		return &s.MACD
	case FieldSupport:
		return &s.Support
	case FieldResistance:
		return &s.Resistance
	case FieldCirculatingSupply:
		return &s.CirculatingSupply
	case FieldTotalSupply:
		return &s.TotalSupply
	case FieldMaxSupply:
		return &s.MaxSupply
	case FieldEmployees:
		return &s.Employees
	}
	return nil
}

func (s *Snapshot) textRef(f Field) **string {
	switch f {
	case FieldName:
		return &s.Name
	case FieldSector:
		return &s.Sector
	case FieldIndustry:
		return &s.Industry
	case FieldDescription:
		return &s.Description
	case FieldWebsite:
		return &s.Website
	case FieldCurrency:
		return &s.Currency
	case FieldExchange:
		return &s.Exchange
	case FieldRecommendation:
		return &s.Recommendation
	}
	return nil
}
