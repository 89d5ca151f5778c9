package parser

import "fmt"

var romanDigits = map[byte]int{
	'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000,
}

// romanToInt converts a roman numeral, subtracting a digit that precedes a larger one.
func romanToInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty roman numeral")
	}
	total := 0
	for i := 0; i < len(s); i++ {
		v, ok := romanDigits[s[i]]
		if !ok {
			return 0, fmt.Errorf("%q is not a roman digit", s[i])
		}
		if i+1 < len(s) {
			if next, ok := romanDigits[s[i+1]]; ok && v < next {
				total -= v
				continue
			}
		}
		total += v
	}
	return total, nil
}

func binaryToInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty binary literal")
	}
	if len(s) > 53 {
		return 0, fmt.Errorf("binary literal wider than 53 bits")
	}
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			n <<= 1
		case '1':
			n = n<<1 | 1
		default:
			return 0, fmt.Errorf("%q is not a binary digit", s[i])
		}
	}
	return n, nil
}
