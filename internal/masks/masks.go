// Package masks provides canonical display formatting for Brazilian
// identifiers and numeric fields (CPF, CNPJ, CEP, phone, decimals).
//
// Every function is pure and total: any input string — raw digits, an
// already-masked value, or pasted text with stray punctuation — yields the
// same canonically punctuated prefix of the target format. Digits beyond the
// format's maximum length are dropped, so re-masking a masked value is a
// no-op.
package masks

import "strings"

// OnlyNumbers strips every character that is not an ASCII digit.
func OnlyNumbers(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}

// CPF formats a personal tax id as 000.000.000-00, growing the punctuation
// as digits accumulate. Digits beyond 11 are dropped.
func CPF(value string) string {
	d := OnlyNumbers(value)
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + "." + d[3:]
	case len(d) <= 9:
		return d[:3] + "." + d[3:6] + "." + d[6:]
	default:
		if len(d) > 11 {
			d = d[:11]
		}
		return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	}
}

// CNPJ formats a company tax id as 00.000.000/0000-00. Digits beyond 14 are
// dropped.
func CNPJ(value string) string {
	d := OnlyNumbers(value)
	switch {
	case len(d) <= 2:
		return d
	case len(d) <= 5:
		return d[:2] + "." + d[2:]
	case len(d) <= 8:
		return d[:2] + "." + d[2:5] + "." + d[5:]
	case len(d) <= 12:
		return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:]
	default:
		if len(d) > 14 {
			d = d[:14]
		}
		return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
	}
}

// CEP formats a postal code as 00000-000. Digits beyond 8 are dropped.
func CEP(value string) string {
	d := OnlyNumbers(value)
	if len(d) <= 5 {
		return d
	}
	if len(d) > 8 {
		d = d[:8]
	}
	return d[:5] + "-" + d[5:]
}

// Phone formats a phone number as (00) 0000-0000 for 10-digit fixed lines or
// (00) 00000-0000 for 11-digit mobiles. The 11th digit shifts the boundary of
// the second group from 4 to 5 digits. Digits beyond 11 are dropped.
func Phone(value string) string {
	d := OnlyNumbers(value)
	switch {
	case len(d) == 0:
		return ""
	case len(d) <= 2:
		return "(" + d
	case len(d) <= 6:
		return "(" + d[:2] + ") " + d[2:]
	case len(d) <= 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	default:
		if len(d) > 11 {
			d = d[:11]
		}
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
}

// Decimal keeps digits and at most one decimal point. Extra points are
// discarded as delimiters but the digits around them are kept, so
// "500.50.25" becomes "500.5025".
func Decimal(value string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, value)

	parts := strings.Split(cleaned, ".")
	if len(parts) > 2 {
		return parts[0] + "." + strings.Join(parts[1:], "")
	}
	return cleaned
}

// Integer strips everything but digits.
func Integer(value string) string {
	return OnlyNumbers(value)
}
