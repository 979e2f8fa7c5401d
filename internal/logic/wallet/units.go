package wallet

import (
	"errors"
	"math/big"
	"strings"

	"bluemercantile/internal/constant"
)

var unitScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(constant.TokenDecimals), nil)

// ParseUnits converts a human-readable decimal amount ("1.5") into base units
// with fixed 18-decimal scaling.
func ParseUnits(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, errors.New("empty amount")
	}

	whole := amount
	frac := ""
	if idx := strings.IndexByte(amount, '.'); idx >= 0 {
		whole = amount[:idx]
		frac = amount[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > constant.TokenDecimals {
		return nil, errors.New("too many decimal places")
	}

	// 整数和小数部分都只允许纯数字，带符号的小数（"1.-5"）必须整体拒绝
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, errors.New("malformed amount")
	}

	wholeInt, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, errors.New("malformed amount")
	}

	result := new(big.Int).Mul(wholeInt, unitScale)
	if frac != "" {
		// 小数部分右补零到 18 位
		padded := frac + strings.Repeat("0", constant.TokenDecimals-len(frac))
		fracInt, ok := new(big.Int).SetString(padded, 10)
		if !ok {
			return nil, errors.New("malformed amount")
		}
		result.Add(result, fracInt)
	}
	return result, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatUnits renders a base-unit value as a decimal string with trailing
// zeros trimmed, e.g. 1500000000000000000 -> "1.5".
func FormatUnits(value *big.Int) string {
	if value == nil || value.Sign() == 0 {
		return "0"
	}

	quo, rem := new(big.Int).QuoRem(value, unitScale, new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}

	frac := rem.String()
	if pad := constant.TokenDecimals - len(frac); pad > 0 {
		frac = strings.Repeat("0", pad) + frac
	}
	frac = strings.TrimRight(frac, "0")
	return quo.String() + "." + frac
}
