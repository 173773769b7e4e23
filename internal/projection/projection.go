// Package projection turns a fiat amount, a holding currency and a horizon
// into the inflation and reference-asset figures shown to the user.
//
// Everything here is a pure computation: no I/O, no shared mutable state. The
// reference asset price is resolved by the caller before Project is invoked.
package projection

import (
	"fmt"
	"math"

	"github.com/iwvelando/sacracalc/pkg/constants"
	"github.com/iwvelando/sacracalc/pkg/mathutil"
)

// Request is the immutable input of one projection.
type Request struct {
	FiatAmount        float64 `json:"fiatAmount"`
	CurrencyCode      string  `json:"currency"`
	Years             int     `json:"years"`
	Months            int     `json:"months"`
	GrowthRate        float64 `json:"growthRate"`
	ReferencePriceUSD float64 `json:"referencePriceUsd"`
}

// Result holds every figure derived from a Request.
type Result struct {
	Request  Request         `json:"request"`
	Currency CurrencyProfile `json:"currencyProfile"`

	TotalYearsElapsed       float64 `json:"totalYearsElapsed"`
	FutureReferencePriceUSD float64 `json:"futureReferencePriceUsd"`

	AssetQuantityNow    float64 `json:"assetQuantityNow"`
	AssetQuantityFuture float64 `json:"assetQuantityFuture"`

	SmallestUnitsNow        int64 `json:"smallestUnitsNow"`
	SmallestUnitsFuture     int64 `json:"smallestUnitsFuture"`
	SmallestUnitsDifference int64 `json:"smallestUnitsDifference"`

	// InflationAdjustedFiatUSD is the decayed amount computed on the USD path.
	InflationAdjustedFiatUSD   float64 `json:"inflationAdjustedFiatUsd"`
	InflationAdjustedFiatValue float64 `json:"inflationAdjustedFiatValue"`
	InflationLossAmount        float64 `json:"inflationLossAmount"`
	FutureValueIfHeldAsAsset   float64 `json:"futureValueIfHeldAsAsset"`
	NominalFutureCost          float64 `json:"nominalFutureCost"`
	PurchasingPowerLossPercent float64 `json:"purchasingPowerLossPercent"`
}

// Engine resolves currency codes against a fixed table and computes
// projections. It is safe for concurrent use.
type Engine struct {
	currencies *CurrencyTable
}

// NewEngine creates an engine bound to the given currency table.
func NewEngine(currencies *CurrencyTable) *Engine {
	return &Engine{currencies: currencies}
}

// Currencies exposes the table the engine was built with.
func (e *Engine) Currencies() *CurrencyTable {
	return e.currencies
}

// Project looks up the request's currency and computes the projection.
func (e *Engine) Project(req Request) (Result, error) {
	if e.currencies == nil {
		return Result{}, &InputError{Field: "currency", Reason: "no currency table configured"}
	}
	profile, err := e.currencies.Lookup(req.CurrencyCode)
	if err != nil {
		return Result{}, err
	}
	return Compute(profile, req)
}

// Compute evaluates the projection formulas for an already resolved profile.
func Compute(profile CurrencyProfile, req Request) (Result, error) {
	if err := profile.Validate(); err != nil {
		return Result{}, err
	}
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	fx := profile.ExchangeRateToUSD
	inflation := profile.AnnualInflationRate
	years := req.ElapsedYears()

	growth := mathutil.CompoundFactor(req.GrowthRate, years)
	decay := mathutil.CompoundFactor(-inflation, years)

	fiatUSD := req.FiatAmount * fx
	futurePrice := req.ReferencePriceUSD * growth
	quantityNow := fiatUSD / req.ReferencePriceUSD
	adjustedUSD := fiatUSD * decay
	quantityFuture := adjustedUSD / futurePrice

	unitsNow := mathutil.TruncateToUnits(quantityNow, constants.SmallestUnitsPerAsset)
	unitsFuture := mathutil.TruncateToUnits(quantityFuture, constants.SmallestUnitsPerAsset)

	adjustedFiat := req.FiatAmount * decay
	nominalFutureCost := req.FiatAmount / decay

	result := Result{
		Request:                    req,
		Currency:                   profile,
		TotalYearsElapsed:          years,
		FutureReferencePriceUSD:    futurePrice,
		AssetQuantityNow:           quantityNow,
		AssetQuantityFuture:        quantityFuture,
		SmallestUnitsNow:           unitsNow,
		SmallestUnitsFuture:        unitsFuture,
		SmallestUnitsDifference:    unitsNow - unitsFuture,
		InflationAdjustedFiatUSD:   adjustedUSD,
		InflationAdjustedFiatValue: adjustedFiat,
		InflationLossAmount:        req.FiatAmount - adjustedFiat,
		FutureValueIfHeldAsAsset:   quantityNow * futurePrice / fx,
		NominalFutureCost:          nominalFutureCost,
		PurchasingPowerLossPercent: mathutil.CalculatePercentage(nominalFutureCost-req.FiatAmount, req.FiatAmount),
	}
	if !result.finite() {
		return Result{}, &InputError{Field: "growthRate", Reason: "projection exceeds the representable range"}
	}
	return result, nil
}

func (r Result) finite() bool {
	for _, v := range []float64{
		r.FutureReferencePriceUSD,
		r.AssetQuantityNow,
		r.AssetQuantityFuture,
		r.InflationAdjustedFiatUSD,
		r.InflationAdjustedFiatValue,
		r.InflationLossAmount,
		r.FutureValueIfHeldAsAsset,
		r.NominalFutureCost,
		r.PurchasingPowerLossPercent,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ElapsedYears is the fractional horizon, years + months/12.
func (r Request) ElapsedYears() float64 {
	return float64(r.Years) + float64(r.Months)/constants.MonthsPerYear
}

// Validate checks the request preconditions that do not depend on the
// currency profile.
func (r Request) Validate() error {
	switch {
	case !isPositiveFinite(r.FiatAmount):
		return &InputError{Field: "fiatAmount", Reason: "amount must be a positive number"}
	case !isPositiveFinite(r.ReferencePriceUSD):
		return &InputError{Field: "referencePriceUsd", Reason: "reference price must be a positive number"}
	case r.Years < 0 || r.Years > constants.MaxHorizonYears:
		return &InputError{Field: "years", Reason: fmt.Sprintf("years must be between 0 and %d", constants.MaxHorizonYears)}
	case r.Months < 0 || r.Months >= constants.MonthsPerYear:
		return &InputError{Field: "months", Reason: "months must be between 0 and 11"}
	case math.IsNaN(r.GrowthRate) || math.IsInf(r.GrowthRate, 0) || r.GrowthRate <= -1:
		return &InputError{Field: "growthRate", Reason: "growth rate must be greater than -1"}
	}
	return nil
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
