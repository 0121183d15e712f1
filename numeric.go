package json

import (
	"math"
	"math/big"
	"strconv"

	"github.com/mcvoid/streamjson/internal/arena"
)

// NumberClass classifies a scanned numeric literal.
type NumberClass int

const (
	Integer NumberClass = iota
	Decimal
	Scientific
)

// NumberDescriptor is the scanner's output for one numeric literal: the
// classification plus enough structure to reconstruct or re-render the
// literal without re-scanning it.
type NumberDescriptor struct {
	Class        NumberClass
	Negative     bool
	DigitSpan    string
	FractionSpan string
	ExpNegative  bool
	ExpSpan      string
	Raw          string
}

// NumberPolicy selects how a NumberDescriptor is materialized into a
// Value, selecting a tier on the integer/decimal overflow ladder.
type NumberPolicy int

const (
	// Auto: int32 when it fits, else int64, else (fits int128) int64 with
	// a warning, else float64 with a warning.
	Auto NumberPolicy = iota
	// AutoDecimal: like Auto, but the tier beyond int64 is an exact
	// arbitrary-precision decimal (math/big) instead of a warned int64.
	AutoDecimal
	// StringPolicy preserves the raw lexeme verbatim as a string Value.
	StringPolicy
)

// warner receives the soft "number-out-of-range" notice: logged as a
// warning rather than surfaced as a parse failure.
type warner interface {
	Warn(desc NumberDescriptor, msg string)
}

// int128Bound is the magnitude bound (2^127 - 1) used to test whether an
// out-of-int64-range literal still fits a signed 128-bit integer.
var int128Bound = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))

// clampInt64 saturates bi to the int64 range, used only for the
// int128-band warn-and-clamp tier.
func clampInt64(bi *big.Int) int64 {
	if bi.Sign() < 0 {
		return math.MinInt64
	}
	return math.MaxInt64
}

// BuildNumberValue materializes desc into a Value per policy, allocated
// through a (nil for unmanaged ownership). Scientific literals always
// become a float.
func BuildNumberValue(desc NumberDescriptor, policy NumberPolicy, a *arena.Arena, w warner) *Value {
	if policy == StringPolicy {
		return NewStringValue(desc.Raw, a)
	}
	if desc.Class == Scientific {
		f, _ := strconv.ParseFloat(desc.Raw, 64)
		return NewFloat(f, a)
	}
	if desc.Class == Decimal {
		return buildDecimalTier(desc, policy, a, w)
	}
	return buildIntegerTier(desc, policy, a, w)
}

func buildIntegerTier(desc NumberDescriptor, policy NumberPolicy, a *arena.Arena, w warner) *Value {
	if i32, err := strconv.ParseInt(desc.Raw, 10, 32); err == nil {
		return NewInt(i32, a)
	}
	if i64, err := strconv.ParseInt(desc.Raw, 10, 64); err == nil {
		return NewInt(i64, a)
	}
	bi, ok := new(big.Int).SetString(desc.Raw, 10)
	if !ok {
		f, _ := strconv.ParseFloat(desc.Raw, 64)
		return NewFloat(f, a)
	}
	if bi.CmpAbs(int128Bound) <= 0 {
		if policy == AutoDecimal {
			return NewStringValue(bi.String(), a)
		}
		if w != nil {
			w.Warn(desc, "integer literal exceeds int64 range but fits int128, clamping to int64")
		}
		return NewInt(clampInt64(bi), a)
	}
	// Beyond int128 range: degrade to double, per Auto's last tier.
	f, _ := strconv.ParseFloat(desc.Raw, 64)
	if w != nil {
		w.Warn(desc, "integer literal exceeds int128 range, degrading to double")
	}
	return NewFloat(f, a)
}

func buildDecimalTier(desc NumberDescriptor, policy NumberPolicy, a *arena.Arena, w warner) *Value {
	f, err := strconv.ParseFloat(desc.Raw, 64)
	if err != nil || math.IsInf(f, 0) {
		if policy == AutoDecimal {
			if bf, ok := new(big.Float).SetString(desc.Raw); ok {
				return NewStringValue(bf.Text('g', -1), a)
			}
		}
		if w != nil {
			w.Warn(desc, "decimal literal out of double range, degrading to double with precision loss")
		}
		return NewFloat(f, a)
	}
	return NewFloat(f, a)
}
