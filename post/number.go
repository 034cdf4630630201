package post

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// number parses raw if it is a JSON number token.
func number(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// ToNumber converts any JSON value to a number with loose arithmetic rules:
// null and false are 0, true is 1, strings are parsed after trimming white
// space (the empty string is 0), an array converts through its single element
// (an empty array is 0). Everything else, including unparsable strings and
// objects, is NaN.
func ToNumber(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return math.NaN()
	}
	switch raw[0] {
	case 'n', 'f':
		return 0
	case 't':
		return 1
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return math.NaN()
		}
		return stringToNumber(s)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return math.NaN()
		}
		switch len(items) {
		case 0:
			return 0
		case 1:
			// An array element converts through its string form, where
			// booleans and objects do not read back as numbers.
			item := bytes.TrimSpace(items[0])
			if len(item) == 0 || item[0] == 't' || item[0] == 'f' || item[0] == '{' {
				return math.NaN()
			}
			return ToNumber(item)
		}
		return math.NaN()
	case '{':
		return math.NaN()
	}
	if f, ok := number(raw); ok {
		return f
	}
	return math.NaN()
}

func stringToNumber(s string) float64 {
	s = strings.TrimFunc(s, isSpace)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, ok := new(big.Int).SetString(s[2:], base)
			if !ok || strings.ContainsAny(s[2:], "_+-") {
				return math.NaN()
			}
			f, _ := new(big.Float).SetInt(n).Float64()
			return f
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u2028', '\u2029', '\ufeff':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// FormatNumber renders f as a JSON number in its shortest round-trip form.
// Magnitudes from 1e-6 up to 1e21 are written in plain decimal notation,
// others in exponent notation (1e+21, 1.5e-7). Negative zero is written as 0;
// NaN and the infinities, which JSON cannot represent, as null.
func FormatNumber(f float64) json.RawMessage {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return json.RawMessage("null")
	case f == 0:
		return json.RawMessage("0")
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return json.RawMessage(strconv.FormatFloat(f, 'f', -1, 64))
	}
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	return json.RawMessage(mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0"))
}
