package utils

import (
	"time"

	"github.com/seenimoa/marketdata/pkg/models"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST *time.Location

// NewYork is the US equity market time zone.
var NewYork *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
	NewYork, err = time.LoadLocation("America/New_York")
	if err != nil {
		NewYork = time.FixedZone("EST", -5*60*60)
	}
}

// FormatDateTimeIST formats a time.Time to "2006-01-02 15:04:05 IST".
func FormatDateTimeIST(t time.Time) string {
	return t.In(IST).Format("2006-01-02 15:04:05 IST")
}

// NSEHoliday reports whether the IST date of t is an NSE trading holiday,
// and its name.
func NSEHoliday(t time.Time) (string, bool) {
	name, ok := nseHolidays2026[t.In(IST).Format("2006-01-02")]
	return name, ok
}

// NSE Trading Holidays for 2026 (update annually).
// Source: NSE India circular.
var nseHolidays2026 = map[string]string{
	"2026-01-26": "Republic Day",
	"2026-02-17": "Mahashivratri",
	"2026-03-10": "Holi",
	"2026-03-30": "Id-ul-Fitr (Ramadan)",
	"2026-04-02": "Ram Navami",
	"2026-04-03": "Good Friday",
	"2026-04-14": "Dr. Ambedkar Jayanti",
	"2026-05-01": "Maharashtra Day",
	"2026-05-25": "Buddha Purnima",
	"2026-06-05": "Id-ul-Zuha (Bakri Id)",
	"2026-07-06": "Muharram",
	"2026-08-15": "Independence Day",
	"2026-08-18": "Parsi New Year",
	"2026-09-04": "Milad-un-Nabi",
	"2026-10-02": "Mahatma Gandhi Jayanti",
	"2026-10-20": "Dussehra",
	"2026-11-09": "Diwali (Laxmi Pujan)",
	"2026-11-10": "Diwali (Balipratipada)",
	"2026-11-30": "Guru Nanak Jayanti",
	"2026-12-25": "Christmas",
}

// MarketStatus returns the trading-session status of a market at t.
// Crypto markets never close.
func MarketStatus(m models.Market, t time.Time) string {
	switch m {
	case models.MarketCrypto:
		return "OPEN (24x7)"
	case models.MarketEquityUS:
		return sessionStatus(t.In(NewYork), 9, 30, 16, 0, nil)
	default:
		return sessionStatus(t.In(IST), 9, 15, 15, 30, NSEHoliday)
	}
}

func sessionStatus(now time.Time, openH, openM, closeH, closeM int, holiday func(time.Time) (string, bool)) string {
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return "CLOSED (Weekend)"
	}
	if holiday != nil {
		if name, ok := holiday(now); ok {
			return "CLOSED (" + name + ")"
		}
	}

	open := time.Date(now.Year(), now.Month(), now.Day(), openH, openM, 0, 0, now.Location())
	close := time.Date(now.Year(), now.Month(), now.Day(), closeH, closeM, 0, 0, now.Location())

	switch {
	case now.Before(open):
		return "PRE-MARKET"
	case !now.After(close):
		return "OPEN"
	default:
		return "CLOSED"
	}
}
