package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/marketdata/pkg/models"
	"github.com/seenimoa/marketdata/pkg/utils"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func outputFormat(cmd *cobra.Command) (string, error) {
	f, _ := cmd.Flags().GetString("format")
	switch f = strings.ToLower(strings.TrimSpace(f)); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	case "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", f)
	}
}

// render writes v in the requested format. table is only called for the
// table format.
func render(w io.Writer, format string, v any, table func() string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		out, err := toYAML(v)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		_, err := io.WriteString(w, table())
		return err
	}
}

// toYAML encodes v as YAML keyed by its JSON field names. JSON is valid
// YAML, so decoding it into a node keeps field order and null values.
func toYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("convert to yaml: %w", err)
	}
	resetStyle(&node)
	return yaml.Marshal(&node)
}

// resetStyle switches JSON flow style and quoting back to block YAML.
func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}

func snapshotTable(s *models.Snapshot) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(tw, "  %s\t%s\n", label, value)
		}
	}

	fmt.Fprintf(tw, "%s\t%s\n", s.Symbol, str(s.Name))
	row("Market", string(s.Market))
	row("Price", price(s.Market, s.LastTradedPrice))
	row("Change", change(s))
	row("Open / Prev", pair(price(s.Market, s.OpenPrice), price(s.Market, s.PreviousClose)))
	row("Day range", pair(price(s.Market, s.DayLow), price(s.Market, s.DayHigh)))
	row("52w range", pair(price(s.Market, s.FiftyTwoWeekLow), price(s.Market, s.FiftyTwoWeekHigh)))
	row("Volume", number(s.Volume, "%.0f"))
	row("Market cap", compact(s.Market, s.MarketCap))
	row("P/E", number(s.PERatio, "%.2f"))
	row("P/B", number(s.PBRatio, "%.2f"))
	row("EPS", number(s.EPS, "%.2f"))
	row("ROE", number(s.ROE, "%.2f%%"))
	row("Div yield", number(s.DividendYield, "%.2f%%"))
	row("Sector", str(s.Sector))
	row("50 / 200 DMA", pair(number(s.FiftyDMA, "%.2f"), number(s.TwoHundredDMA, "%.2f")))
	row("RSI / MACD", pair(number(s.RSI, "%.1f"), number(s.MACD, "%.2f")))
	row("Support / Resistance", pair(number(s.Support, "%.2f"), number(s.Resistance, "%.2f")))
	row("Quality", fmt.Sprintf("%s (%s)", s.DataQuality, s.DataSource))
	row("Sources", strings.Join(s.Sources, ", "))
	if !s.FetchedAt.IsZero() {
		row("Fetched", utils.FormatDateTimeIST(s.FetchedAt))
	}

	tw.Flush()
	return b.String()
}

func compareTable(snaps []*models.Snapshot) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tPRICE\tCHANGE\tMCAP\tP/E\tQUALITY")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Symbol, dash(truncate(str(s.Name), 28)), dash(price(s.Market, s.LastTradedPrice)),
			dash(number(s.OneDayChangePercent, "%+.2f%%")), dash(compact(s.Market, s.MarketCap)),
			dash(number(s.PERatio, "%.2f")), s.DataQuality)
	}
	tw.Flush()
	return b.String()
}

func chartTable(c *models.Chart) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\t%s / %s, %d candles (%s)\n", c.Symbol, c.Period, c.Interval, c.Series.Len(), c.Series.Source)
	if last, ok := c.Series.Last(); ok {
		fmt.Fprintf(tw, "  Last\t%s O %.2f H %.2f L %.2f C %.2f\n",
			utils.FormatDateTimeIST(last.Timestamp), last.Open, last.High, last.Low, last.Close)
	}
	fmt.Fprintf(tw, "  Price / Prev\t%s\n", pair(price(c.Market, c.CurrentPrice), price(c.Market, c.PreviousClose)))

	ind := c.Indicators
	fmt.Fprintf(tw, "  SMA 20 / 50\t%s\n", pair(dash(number(ind.SMA20, "%.2f")), dash(number(ind.SMA50, "%.2f"))))
	fmt.Fprintf(tw, "  RSI 14\t%s\n", dash(number(ind.RSI14, "%.1f")))
	fmt.Fprintf(tw, "  MACD\t%s\n", dash(number(ind.MACD, "%.2f")))
	if bb := ind.Bollinger; bb != nil {
		fmt.Fprintf(tw, "  Bollinger\t%.2f / %.2f / %.2f\n", bb.Lower, bb.Middle, bb.Upper)
	}
	fmt.Fprintf(tw, "  Support / Resistance\t%s\n", pair(dash(number(ind.Support, "%.2f")), dash(number(ind.Resistance, "%.2f"))))

	tw.Flush()
	return b.String()
}

func change(s *models.Snapshot) string {
	if s.OneDayChange == nil || s.OneDayChangePercent == nil {
		return ""
	}
	return fmt.Sprintf("%+.2f (%s)", *s.OneDayChange, utils.FormatPct(*s.OneDayChangePercent))
}

func price(m models.Market, v *float64) string {
	if v == nil {
		return ""
	}
	return utils.FormatPrice(m, *v)
}

func compact(m models.Market, v *float64) string {
	if v == nil {
		return ""
	}
	return utils.FormatCompact(m, *v)
}

func number(v *float64, format string) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf(format, *v)
}

func str(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func pair(a, b string) string {
	if a == "" && b == "" {
		return ""
	}
	return dash(a) + " / " + dash(b)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
