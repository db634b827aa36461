package chain

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	// EtherDecimals is the number of decimals of the native currency.
	EtherDecimals = 18
	// BalancePlaces is the number of fractional digits balances are shown with.
	BalancePlaces = 8
	// GweiDecimals converts gwei to wei.
	GweiDecimals = 9
)

// ErrInvalidAmount is returned for strings that are not non-negative
// decimal numbers.
var ErrInvalidAmount = errors.New("invalid amount")

var decimalPattern = regexp.MustCompile(`^([0-9]+(\.[0-9]*)?|\.[0-9]+)$`)

// ParseDecimal parses a plain non-negative decimal string ("1", "0.5",
// ".25") into an exact rational. Signs, exponents and separators are
// rejected.
func ParseDecimal(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return r, nil
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// ParseUnits converts a decimal amount into base units, rounding half up
// when the amount has more fractional digits than decimals.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	r, err := ParseDecimal(amount)
	if err != nil {
		return nil, err
	}
	return RatToUnits(r, decimals), nil
}

// RatToUnits scales r by 10^decimals and rounds half up.
func RatToUnits(r *big.Rat, decimals uint8) *big.Int {
	num := new(big.Int).Mul(r.Num(), pow10(decimals))
	den := r.Denom()

	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() != 0 && new(big.Int).Lsh(rem.Abs(rem), 1).Cmp(den) >= 0 {
		if num.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return q
}

// FormatUnits renders v (in base units) with exactly places fractional
// digits. Extra digits are truncated, never rounded up.
func FormatUnits(v *big.Int, decimals uint8, places int) string {
	if v == nil {
		v = new(big.Int)
	}
	if places < 0 {
		places = 0
	}

	abs := new(big.Int).Abs(v)
	whole, frac := new(big.Int).QuoRem(abs, pow10(decimals), new(big.Int))

	sign := ""
	if v.Sign() < 0 {
		sign = "-"
	}
	if places == 0 {
		return sign + whole.String()
	}

	digits := frac.String()
	if pad := int(decimals) - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	if decimals == 0 {
		digits = ""
	}
	if len(digits) > places {
		digits = digits[:places]
	} else {
		digits += strings.Repeat("0", places-len(digits))
	}
	return sign + whole.String() + "." + digits
}

// FormatEther renders wei as ether with BalancePlaces fractional digits.
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, EtherDecimals, BalancePlaces)
}

// ParseGwei converts a gwei amount to wei.
func ParseGwei(gwei string) (*big.Int, error) {
	wei, err := ParseUnits(gwei, GweiDecimals)
	if err != nil {
		return nil, err
	}
	if wei.Sign() == 0 {
		return nil, fmt.Errorf("%w: gas price must be positive", ErrInvalidAmount)
	}
	return wei, nil
}
