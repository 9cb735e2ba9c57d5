// Package scoring maps raw financial metrics to normalized value
// scores. Everything here is pure: no I/O, deterministic, no panics.
//
// Two formula families exist for historical reasons and both are load
// bearing: the batch analysis path uses bucketed 0-1 scores averaged
// together, while the integration path uses linear 1/PE and ROE/100
// scores summed with a DCF margin. Downstream consumers depend on the
// bucket thresholds, so the families must not be unified.
package scoring

import (
	"math"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// DCF model constants: assumed 5% annual growth discounted at 10%
// over a 5 year horizon.
const (
	growthRate   = 0.05
	discountRate = 0.10
	dcfYears     = 5
)

// PEBucketScore scores a P/E ratio on the batch path. Lower is better.
//
//	<= 10: Excellent (1.0)
//	10-15: Very Good (0.8)
//	15-20: Good      (0.6)
//	20-25: Fair      (0.4)
//	25-30: Poor      (0.2)
//	> 30:  Very Poor (0)
//
// Non-positive ratios score 0 (negative earnings).
func PEBucketScore(pe float64) float64 {
	switch {
	case pe <= 0:
		return 0
	case pe <= 10:
		return 1.0
	case pe <= 15:
		return 0.8
	case pe <= 20:
		return 0.6
	case pe <= 25:
		return 0.4
	case pe <= 30:
		return 0.2
	default:
		return 0
	}
}

// ROEBucketScore scores a return-on-equity percentage on the batch
// path. Higher is better.
//
//	>= 30: Excellent (1.0)
//	25-30: Very Good (0.8)
//	20-25: Good      (0.6)
//	15-20: Fair      (0.4)
//	10-15: Poor      (0.2)
//	< 10:  Very Poor (0)
func ROEBucketScore(roe float64) float64 {
	switch {
	case roe <= 0:
		return 0
	case roe >= 30:
		return 1.0
	case roe >= 25:
		return 0.8
	case roe >= 20:
		return 0.6
	case roe >= 15:
		return 0.4
	case roe >= 10:
		return 0.2
	default:
		return 0
	}
}

// BatchTotalScore combines the bucketed sub-scores: plain average.
func BatchTotalScore(peScore, roeScore float64) float64 {
	return (peScore + roeScore) / 2
}

// DCFValue is a simplified discounted cash flow estimate from EPS:
// projected earnings for the next five years, discounted back.
func DCFValue(eps float64) float64 {
	value := 0.0
	for year := 1; year <= dcfYears; year++ {
		value += eps * math.Pow(1+growthRate, float64(year)) / math.Pow(1+discountRate, float64(year))
	}
	return value
}

// Buffett computes the integration-path scores from merged market and
// fundamental data. pe_score is the earnings yield 1/PE, roe_score is
// the ROE percentage normalized to 0-1, dcf_score is the DCF margin
// relative to the current price. Total is the sum, each value rounded
// to 2 decimal places. Degenerate inputs (zero or negative price, PE,
// ROE) contribute 0 rather than failing.
func Buffett(price, pe, roe, eps float64) contracts.Scores {
	peScore := 0.0
	if pe > 0 {
		peScore = 1 / pe
	}

	roeScore := 0.0
	if roe > 0 {
		roeScore = roe / 100
	}

	dcfScore := 0.0
	if price > 0 {
		dcfScore = (DCFValue(eps) - price) / price
	}

	return contracts.Scores{
		PEScore:    Round2(peScore),
		ROEScore:   Round2(roeScore),
		DCFScore:   Round2(dcfScore),
		TotalScore: Round2(peScore + roeScore + dcfScore),
	}
}

// Round2 rounds to 2 decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
