package synthetic

// Recent reference prices used when every live source fails. Indian
// listings are keyed by their ".NS" ticker, crypto and US equities by
// their bare ticker.
var anchorPrices = map[string]float64{
	"SBIN.NS":       997,
	"TCS.NS":        3140,
	"RELIANCE.NS":   1458,
	"HDFCBANK.NS":   1740,
	"INFY.NS":       1875,
	"ICICIBANK.NS":  1285,
	"MARUTI.NS":     11200,
	"BAJFINANCE.NS": 945,
	"WIPRO.NS":      295,
	"HCLTECH.NS":    1875,
	"BHARTIARTL.NS": 1685,
	"ITC.NS":        485,
	"HINDUNILVR.NS": 2385,
	"KOTAKBANK.NS":  1785,
	"AXISBANK.NS":   1125,
	"LT.NS":         3685,
	"SUNPHARMA.NS":  1185,
	"ULTRACEMCO.NS": 11800,
	"ASIANPAINT.NS": 2420,
	"NESTLEIND.NS":  2180,
	"TITAN.NS":      3280,
	"TATAMOTORS.NS": 785,
	"TATASTEEL.NS":  145,
	"JSWSTEEL.NS":   985,
	"ADANIENT.NS":   2485,
	"COALINDIA.NS":  385,
	"NTPC.NS":       285,
	"POWERGRID.NS":  285,
	"ONGC.NS":       245,
	"BPCL.NS":       285,
	"IOC.NS":        135,

	"BTC":   97500,
	"ETH":   3420,
	"ADA":   0.89,
	"DOT":   7.2,
	"SOL":   185,
	"MATIC": 0.42,
	"AVAX":  38.5,
	"LINK":  22.8,

	"AAPL":  195,
	"GOOGL": 142,
	"MSFT":  415,
	"TSLA":  248,
}

// Display names for anchored symbols, keyed like anchorPrices.
var anchorNames = map[string]string{
	"SBIN.NS":       "State Bank of India",
	"TCS.NS":        "Tata Consultancy Services Ltd",
	"RELIANCE.NS":   "Reliance Industries Ltd",
	"HDFCBANK.NS":   "HDFC Bank Ltd",
	"INFY.NS":       "Infosys Ltd",
	"ICICIBANK.NS":  "ICICI Bank Ltd",
	"MARUTI.NS":     "Maruti Suzuki India Ltd",
	"BAJFINANCE.NS": "Bajaj Finance Ltd",
	"WIPRO.NS":      "Wipro Ltd",
	"HCLTECH.NS":    "HCL Technologies Ltd",
	"BHARTIARTL.NS": "Bharti Airtel Ltd",
	"ITC.NS":        "ITC Ltd",
	"HINDUNILVR.NS": "Hindustan Unilever Ltd",
	"KOTAKBANK.NS":  "Kotak Mahindra Bank Ltd",
	"AXISBANK.NS":   "Axis Bank Ltd",
	"LT.NS":         "Larsen & Toubro Ltd",
	"SUNPHARMA.NS":  "Sun Pharmaceutical Industries Ltd",
	"TATAMOTORS.NS": "Tata Motors Ltd",
	"TATASTEEL.NS":  "Tata Steel Ltd",

	"BTC":   "Bitcoin",
	"ETH":   "Ethereum",
	"ADA":   "Cardano",
	"DOT":   "Polkadot",
	"SOL":   "Solana",
	"MATIC": "Polygon",
	"AVAX":  "Avalanche",
	"LINK":  "Chainlink",

	"AAPL":  "Apple Inc.",
	"GOOGL": "Alphabet Inc.",
	"MSFT":  "Microsoft Corporation",
	"TSLA":  "Tesla, Inc.",
}

// largeCaps trade an order of magnitude more volume than the default.
var largeCaps = map[string]bool{
	"RELIANCE":  true,
	"TCS":       true,
	"HDFCBANK":  true,
	"INFY":      true,
	"ICICIBANK": true,
}

// priceBand is the fallback price range for an unanchored symbol whose
// ticker contains keyword.
type priceBand struct {
	keyword string
	min     float64
	spread  float64
}

var priceBands = []priceBand{
	{"BANK", 200, 1500},
	{"TECH", 1000, 3000},
	{"PHARMA", 800, 1200},
	{"AUTO", 2000, 10000},
}

var defaultBand = priceBand{min: 100, spread: 1000}

// volatilityByKeyword is checked in order; the first keyword contained in
// the ticker sets the per-step volatility.
var volatilityByKeyword = []struct {
	keyword string
	vol     float64
}{
	{"BANK", 0.02},
	{"TECH", 0.025},
	{"IT", 0.025},
	{"PHARMA", 0.03},
	{"AUTO", 0.035},
	{"METAL", 0.04},
	{"STEEL", 0.04},
	{"CRYPTO", 0.08},
	{"BTC", 0.08},
	{"ETH", 0.08},
}

const (
	defaultVolatility = 0.025
	cryptoVolatility  = 0.08
	maxDayChangePct   = 1.5
	maxCandles        = 1000
)
