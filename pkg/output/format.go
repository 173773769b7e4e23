// Package output provides utilities for formatting and displaying projection results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/iwvelando/sacracalc/internal/pricefeed"
	"github.com/iwvelando/sacracalc/internal/projection"
	"github.com/iwvelando/sacracalc/pkg/constants"
	"github.com/iwvelando/sacracalc/pkg/datetime"
	"github.com/iwvelando/sacracalc/pkg/format"
	"github.com/iwvelando/sacracalc/pkg/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const chartWidth = 40

// Labels names the reference asset in rendered output.
type Labels struct {
	AssetSymbol string `json:"assetSymbol"`
	UnitName    string `json:"unitName"`
}

// Report is everything needed to render one projection.
type Report struct {
	Result projection.Result `json:"result"`
	Quote  pricefeed.Quote   `json:"quote"`
	Labels Labels            `json:"labels"`
}

func (l Labels) withDefaults() Labels {
	if l.AssetSymbol == "" {
		l.AssetSymbol = constants.DefaultAssetSymbol
	}
	if l.UnitName == "" {
		l.UnitName = constants.DefaultSmallestUnitName
	}
	return l
}

// Write renders report in the named format.
func Write(w io.Writer, outputFormat string, report Report, tag language.Tag) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, report, tag)
	case constants.OutputFormatCSV:
		return CsvFormat(w, report)
	case constants.OutputFormatJSON:
		return JSONFormat(w, report)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

// PrettyFormat outputs a human-readable summary in the language of tag.
func PrettyFormat(w io.Writer, report Report, tag language.Tag) error {
	p := i18n.Printer(tag)
	r := report.Result
	labels := report.Labels.withDefaults()
	code := r.Currency.Code
	horizon := datetime.FormatHorizon(r.Request.Years, r.Request.Months)
	amount := format.Currency(p, r.Request.FiatAmount, code)

	pw := &printer{w: w, p: p}

	pw.line(i18n.MsgSetupTitle)
	pw.line(i18n.MsgSetupAmount, amount)
	pw.line(i18n.MsgSetupTimeframe, horizon)
	price := format.USD(p, r.Request.ReferencePriceUSD)
	switch {
	case report.Quote.Fallback:
		pw.line(i18n.MsgSetupFallbackPrice, labels.AssetSymbol, price)
	case report.Quote.Live:
		pw.line(i18n.MsgSetupPrice, labels.AssetSymbol, price)
	default:
		pw.line(i18n.MsgSetupStaticPrice, labels.AssetSymbol, price)
	}
	pw.line(i18n.MsgSetupInflation, format.Percent(p, r.Currency.AnnualInflationRate))
	pw.line(i18n.MsgSetupGrowth, labels.AssetSymbol, format.Percent(p, r.Request.GrowthRate))
	pw.blank()

	pw.line(i18n.MsgMeaningTitle)
	pw.line(i18n.MsgMeaningNow, labels.AssetSymbol,
		format.Quantity(p, r.AssetQuantityNow), labels.AssetSymbol,
		format.Units(p, r.SmallestUnitsNow), labels.UnitName)
	pw.line(i18n.MsgMeaningLater, labels.AssetSymbol, horizon,
		format.Quantity(p, r.AssetQuantityFuture), labels.AssetSymbol,
		format.Units(p, r.SmallestUnitsFuture), labels.UnitName)
	if r.SmallestUnitsDifference >= 0 {
		pw.line(i18n.MsgMeaningMore, format.Units(p, r.SmallestUnitsDifference), labels.UnitName)
	} else {
		pw.line(i18n.MsgMeaningFewer, format.Units(p, -r.SmallestUnitsDifference), labels.UnitName)
	}
	pw.blank()

	adjusted := format.Currency(p, r.InflationAdjustedFiatValue, code)
	pw.line(i18n.MsgFiatTitle, code)
	pw.line(i18n.MsgFiatAfterInflation, amount, adjusted)
	pw.line(i18n.MsgFiatReduced, amount, adjusted)
	pw.line(i18n.MsgFiatLoss, format.Currency(p, r.InflationLossAmount, code))
	pw.blank()

	pw.line(i18n.MsgPowerTitle)
	pw.line(i18n.MsgPowerCost, amount, format.Currency(p, r.NominalFutureCost, code), horizon)
	pw.line(i18n.MsgPowerLoss, format.PercentValue(p, r.PurchasingPowerLossPercent))
	pw.blank()

	if note := strings.TrimSpace(r.Currency.MarketNote); note != "" {
		pw.line(i18n.MsgInsightTitle)
		pw.raw(note)
		pw.blank()
	}

	pw.line(i18n.MsgConfidenceTitle)
	pw.line(i18n.MsgConfidenceBasis, labels.AssetSymbol, format.Percent(p, r.Request.GrowthRate))
	pw.line(i18n.MsgConfidenceDisclaim)
	pw.blank()

	pw.line(i18n.MsgChartTitle, code)
	pw.bars([]bar{
		{label: p.Sprintf(i18n.MsgChartAsset, labels.AssetSymbol), value: r.FutureValueIfHeldAsAsset},
		{label: p.Sprintf(i18n.MsgChartFiat), value: r.InflationAdjustedFiatValue},
	}, code)

	if report.Quote.Fallback {
		pw.blank()
		pw.line(i18n.MsgFallbackNotice, labels.AssetSymbol, format.USD(p, report.Quote.PriceUSD))
	}

	return pw.err
}

// CsvFormat outputs in comma-separated value format, one header row and one
// data row.
func CsvFormat(w io.Writer, report Report) error {
	r := report.Result
	columns := []struct {
		name  string
		value string
	}{
		{"currency", r.Currency.Code},
		{"fiat_amount", format.Plain(r.Request.FiatAmount)},
		{"years", fmt.Sprintf("%d", r.Request.Years)},
		{"months", fmt.Sprintf("%d", r.Request.Months)},
		{"total_years", fmt.Sprintf("%.4f", r.TotalYearsElapsed)},
		{"reference_price_usd", format.Plain(r.Request.ReferencePriceUSD)},
		{"price_fallback", fmt.Sprintf("%t", report.Quote.Fallback)},
		{"growth_rate", fmt.Sprintf("%.4f", r.Request.GrowthRate)},
		{"inflation_rate", fmt.Sprintf("%.4f", r.Currency.AnnualInflationRate)},
		{"future_reference_price_usd", format.Plain(r.FutureReferencePriceUSD)},
		{"asset_quantity_now", fmt.Sprintf("%.8f", r.AssetQuantityNow)},
		{"asset_quantity_future", fmt.Sprintf("%.8f", r.AssetQuantityFuture)},
		{"smallest_units_now", fmt.Sprintf("%d", r.SmallestUnitsNow)},
		{"smallest_units_future", fmt.Sprintf("%d", r.SmallestUnitsFuture)},
		{"smallest_units_difference", fmt.Sprintf("%d", r.SmallestUnitsDifference)},
		{"inflation_adjusted_fiat", format.Plain(r.InflationAdjustedFiatValue)},
		{"inflation_loss", format.Plain(r.InflationLossAmount)},
		{"future_value_if_held", format.Plain(r.FutureValueIfHeldAsAsset)},
		{"nominal_future_cost", format.Plain(r.NominalFutureCost)},
		{"purchasing_power_loss_percent", fmt.Sprintf("%.2f", r.PurchasingPowerLossPercent)},
	}

	names := make([]string, len(columns))
	values := make([]string, len(columns))
	for i, c := range columns {
		names[i] = csvQuote(c.name)
		values[i] = csvQuote(c.value)
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n", strings.Join(names, ","), strings.Join(values, ","))
	return err
}

func csvQuote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// JSONFormat outputs the report as an indented JSON document.
func JSONFormat(w io.Writer, report Report) error {
	report.Labels = report.Labels.withDefaults()
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

type bar struct {
	label string
	value float64
}

type printer struct {
	w   io.Writer
	p   *message.Printer
	err error
}

func (pw *printer) line(key string, args ...interface{}) {
	if pw.err != nil {
		return
	}
	_, pw.err = pw.p.Fprintf(pw.w, key, args...)
	if pw.err == nil {
		_, pw.err = io.WriteString(pw.w, "\n")
	}
}

func (pw *printer) raw(text string) {
	if pw.err != nil {
		return
	}
	_, pw.err = io.WriteString(pw.w, text+"\n")
}

func (pw *printer) blank() {
	pw.raw("")
}

// bars draws a horizontal bar per value, scaled to the largest one.
// Non-finite values get an empty bar and do not affect the scale.
func (pw *printer) bars(bars []bar, code string) {
	labelWidth := 0
	largest := 0.0
	for _, b := range bars {
		if n := utf8.RuneCountInString(b.label); n > labelWidth {
			labelWidth = n
		}
		if isFinite(b.value) {
			largest = math.Max(largest, b.value)
		}
	}

	for _, b := range bars {
		length := 0
		if largest > 0 && b.value > 0 && isFinite(b.value) {
			length = int(math.Round(b.value / largest * chartWidth))
		}
		padding := strings.Repeat(" ", labelWidth-utf8.RuneCountInString(b.label))
		pw.raw(fmt.Sprintf("%s%s | %s%s %s",
			b.label, padding,
			strings.Repeat("#", length), strings.Repeat(" ", chartWidth-length),
			format.Currency(pw.p, b.value, code)))
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
