package currency

import "fmt"

// Format renders an amount for display, e.g. Format(1234.5, "EUR") = "EUR 1,234.50".
func Format(amount float64, code string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	whole := int64(amount)
	cents := int64(amount*100+0.5) - whole*100
	if cents >= 100 {
		whole++
		cents -= 100
	}

	intStr := fmt.Sprintf("%d", whole)
	formatted := fmt.Sprintf("%s %s.%02d", code, addThousandsSeparator(intStr, ","), cents)

	if negative {
		formatted = "-" + formatted
	}
	return formatted
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
