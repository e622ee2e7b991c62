package parser

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"pharmacrawl/internal/types"
)

// priceTokenRe matches a currency-prefixed integer-like token such as
// "Rs. 1,250". The site quotes rupee amounts without decimals.
var priceTokenRe = regexp.MustCompile(`Rs\.\s*([\d,]+)`)

// ScanPrices scans a text scope for price tokens and resolves them
// into current/original prices.
//
// Policy: parse every currency-prefixed token in the scope and take
// the distinct values in ascending order. Zero values means no price.
// A single value is the current price. With two or more, the minimum
// is the current (sale) price and the maximum the original list
// price; the discount percentage is derived only when max > min.
//
// This is a heuristic, not a guarantee: a scope holding more than two
// unrelated price tokens will mis-assign the original price.
func ScanPrices(text string) types.PriceInfo {
	var info types.PriceInfo

	matches := priceTokenRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return info
	}

	seen := make(map[float64]bool)
	var values []float64
	for _, m := range matches {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return info
	}

	sort.Float64s(values)

	info.Current = types.Float64Ptr(values[0])
	if len(values) >= 2 {
		info.Original = types.Float64Ptr(values[len(values)-1])
		if *info.Original > *info.Current {
			discount := (*info.Original - *info.Current) / *info.Original * 100
			info.DiscountPercentage = types.Float64Ptr(round2(discount))
		}
	}

	return info
}

// ParsePriceToken parses a single currency-prefixed token, returning
// false when the text holds none.
func ParsePriceToken(text string) (float64, bool) {
	m := priceTokenRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
