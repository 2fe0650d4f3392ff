package pix

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// minorUnitsThreshold is the smallest whole number that is read as an amount
// already expressed in minor units (centavos) instead of reais.
const (
	minorUnitsThreshold = 1000
	maxExactText        = 64
	maxIntegerDigits    = 20
)

var (
	hundred        = decimal.NewFromInt(100)
	threshold      = decimal.NewFromInt(minorUnitsThreshold)
	maxMinorUnits  = decimal.NewFromInt(math.MaxInt64)
	amountStrip    = regexp.MustCompile(`[^\d,.\-]`)
	leadingDecimal = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
)

// Amount is a canonical monetary amount. MinorUnits is always at least 1 and
// equals Display*100 rounded half away from zero.
type Amount struct {
	MinorUnits int64
	Display    decimal.Decimal
}

// DefaultAmount is used whenever the client amount cannot be understood.
func DefaultAmount() Amount {
	return Amount{MinorUnits: 100, Display: decimal.NewFromInt(1)}
}

// String returns the display value with two decimals, e.g. "10.50".
func (a Amount) String() string {
	return a.Display.StringFixed(2)
}

// ParseAmount canonicalizes an untrusted client amount. Strings may carry
// currency punctuation and use a comma as decimal separator. Whole numbers of
// 1000 or more are taken as minor units; other numbers as reais.
func ParseAmount(raw any) Amount {
	switch v := raw.(type) {
	case string:
		d, ok := parseAmountString(v)
		if !ok {
			return DefaultAmount()
		}
		return newAmount(d)
	case json.Number:
		d, ok := parseDecimal(v.String())
		if !ok {
			return DefaultAmount()
		}
		return fromNumber(d)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return DefaultAmount()
		}
		return fromNumber(decimal.NewFromFloat(v))
	case int:
		return fromNumber(decimal.NewFromInt(int64(v)))
	case int64:
		return fromNumber(decimal.NewFromInt(v))
	default:
		return DefaultAmount()
	}
}

func fromNumber(d decimal.Decimal) Amount {
	d, ok := bounded(d)
	if !ok {
		return DefaultAmount()
	}
	if d.IsInteger() && d.GreaterThanOrEqual(threshold) {
		d = d.Div(hundred)
	}
	return newAmount(d)
}

func newAmount(display decimal.Decimal) Amount {
	display, ok := bounded(display)
	if !ok {
		return DefaultAmount()
	}
	minor := display.Mul(hundred).Round(0)
	if minor.GreaterThanOrEqual(maxMinorUnits) {
		return DefaultAmount()
	}
	if minor.LessThan(decimal.NewFromInt(1)) {
		return Amount{MinorUnits: 1, Display: decimal.New(1, -2)}
	}
	return Amount{MinorUnits: minor.IntPart(), Display: display}
}

// parseAmountString keeps digits, separators and signs, turns the first comma
// into a decimal point and reads the longest numeric prefix.
func parseAmountString(s string) (decimal.Decimal, bool) {
	cleaned := strings.Replace(amountStrip.ReplaceAllString(s, ""), ",", ".", 1)
	prefix := leadingDecimal.FindString(cleaned)
	if prefix == "" {
		return decimal.Decimal{}, false
	}
	prefix = strings.TrimSuffix(prefix, ".")
	if strings.HasPrefix(prefix, ".") || strings.HasPrefix(prefix, "-.") {
		prefix = strings.Replace(prefix, ".", "0.", 1)
	}
	return parseDecimal(prefix)
}

// parseDecimal reads numeric text exactly when it is short. Longer text goes
// through float64, which still carries more precision than cents need.
func parseDecimal(s string) (decimal.Decimal, bool) {
	if len(s) > maxExactText {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(f), true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// bounded checks the magnitude from coefficient length and exponent alone,
// before any arithmetic rescales the value. Values far below one cent become
// zero.
func bounded(d decimal.Decimal) (decimal.Decimal, bool) {
	digits := int64(d.NumDigits()) + int64(d.Exponent())
	switch {
	case digits > maxIntegerDigits:
		return decimal.Decimal{}, false
	case digits < -maxIntegerDigits:
		return decimal.Zero, true
	}
	return d, true
}
