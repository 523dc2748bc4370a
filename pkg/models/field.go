package models

// Field names one Snapshot attribute. PartialRecords are keyed by Field so the
// merger can walk every attribute in a fixed order.
type Field string

// Numeric fields. Percent-valued fields hold percentage points (12.5 == 12.5%).
const (
	// Price.
	FieldPrice            Field = "last_traded_price"
	FieldChange           Field = "one_day_change"
	FieldChangePercent    Field = "one_day_change_percent"
	FieldDayHigh          Field = "day_high"
	FieldDayLow           Field = "day_low"
	FieldOpen             Field = "open_price"
	FieldPreviousClose    Field = "previous_close"
	FieldFiftyTwoWeekHigh Field = "fifty_two_week_high"
	FieldFiftyTwoWeekLow  Field = "fifty_two_week_low"
	FieldVolume           Field = "volume"
	FieldAvgVolume        Field = "avg_volume"
	FieldMarketCap        Field = "market_cap"

	// Valuation.
	FieldPE            Field = "pe_ratio"
	FieldPEG           Field = "peg_ratio"
	FieldBookValue     Field = "book_value"
	FieldPB            Field = "pb_ratio"
	FieldEPS           Field = "eps"
	FieldDividendYield Field = "dividend_yield"
	FieldFaceValue     Field = "face_value"

	// Profitability.
	FieldROE             Field = "roe"
	FieldROA             Field = "roa"
	FieldROCE            Field = "roce"
	FieldGrossMargin     Field = "gross_margin"
	FieldOperatingMargin Field = "operating_margin"
	FieldNetMargin       Field = "net_margin"
	FieldProfitMargin    Field = "profit_margin"

	// Financial health. Debt to equity is a plain ratio (0.41), not percent.
	FieldDebtToEquity Field = "debt_to_equity"
	FieldCurrentRatio Field = "current_ratio"
	FieldQuickRatio   Field = "quick_ratio"
	FieldBeta         Field = "beta"

	// Income statement.
	FieldRevenue         Field = "revenue"
	FieldRevenueGrowth   Field = "revenue_growth"
	FieldEarningsGrowth  Field = "earnings_growth"
	FieldGrossProfit     Field = "gross_profit"
	FieldOperatingIncome Field = "operating_income"
	FieldNetIncome       Field = "net_income"
	FieldEBITDA          Field = "ebitda"

	// Balance sheet and cash flow.
	FieldTotalAssets       Field = "total_assets"
	FieldTotalLiabilities  Field = "total_liabilities"
	FieldTotalDebt         Field = "total_debt"
	FieldTotalEquity       Field = "total_equity"
	FieldCash              Field = "cash"
	FieldFreeCashFlow      Field = "free_cash_flow"
	FieldOperatingCashFlow Field = "operating_cash_flow"

	// Analyst.
	FieldTargetPrice Field = "target_price"

	// Shareholding split.
	FieldPromoters  Field = "promoters"
	FieldFII        Field = "fii"
	FieldDII        Field = "dii"
	FieldPublic     Field = "public"
	FieldGovernment Field = "government"

	// Technical levels.
	FieldFiftyDMA      Field = "fifty_dma"
	FieldTwoHundredDMA Field = "two_hundred_dma"
	FieldRSI           Field = "rsi"
	FieldMACD          Field = "macd"
	FieldSupport       Field = "support"
	FieldResistance    Field = "resistance"

	// Crypto supply.
	FieldCirculatingSupply Field = "circulating_supply"
	FieldTotalSupply       Field = "total_supply"
	FieldMaxSupply         Field = "max_supply"

	// Profile.
	FieldEmployees Field = "employees"
)

// Text fields.
const (
	FieldName           Field = "name"
	FieldSector         Field = "sector"
	FieldIndustry       Field = "industry"
	FieldDescription    Field = "description"
	FieldWebsite        Field = "website"
	FieldCurrency       Field = "currency"
	FieldExchange       Field = "exchange"
	FieldRecommendation Field = "recommendation"
)

// NumberFields lists every numeric Snapshot field in merge order.
var NumberFields = []Field{
	FieldPrice, FieldChange, FieldChangePercent, FieldDayHigh, FieldDayLow,
	FieldOpen, FieldPreviousClose, FieldFiftyTwoWeekHigh, FieldFiftyTwoWeekLow,
	FieldVolume, FieldAvgVolume, FieldMarketCap,

	FieldPE, FieldPEG, FieldBookValue, FieldPB, FieldEPS, FieldDividendYield,
	FieldFaceValue,

	FieldROE, FieldROA, FieldROCE, FieldGrossMargin, FieldOperatingMargin,
	FieldNetMargin, FieldProfitMargin,

	FieldDebtToEquity, FieldCurrentRatio, FieldQuickRatio, FieldBeta,

	FieldRevenue, FieldRevenueGrowth, FieldEarningsGrowth, FieldGrossProfit,
	FieldOperatingIncome, FieldNetIncome, FieldEBITDA,

	FieldTotalAssets, FieldTotalLiabilities, FieldTotalDebt, FieldTotalEquity,
	FieldCash, FieldFreeCashFlow, FieldOperatingCashFlow,

	FieldTargetPrice,

	FieldPromoters, FieldFII, FieldDII, FieldPublic, FieldGovernment,

	FieldFiftyDMA, FieldTwoHundredDMA, FieldRSI, FieldMACD, FieldSupport,
	FieldResistance,

	FieldCirculatingSupply, FieldTotalSupply, FieldMaxSupply,

	FieldEmployees,
}

// TextFields lists every string Snapshot field in merge order.
var TextFields = []Field{
	FieldName, FieldSector, FieldIndustry, FieldDescription, FieldWebsite,
	FieldCurrency, FieldExchange, FieldRecommendation,
}

// PriceFields are the fields the synthetic generator may fill when no live
// source produced a price.
var PriceFields = []Field{
	FieldPrice, FieldChange, FieldChangePercent, FieldPreviousClose,
	FieldOpen, FieldDayHigh, FieldDayLow,
}
