package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// windRe matches a surface wind group: direction (or VRB), speed, optional
// gust, knots. e.g. "22015KT", "18027G35KT", "VRB03KT".
var windRe = regexp.MustCompile(`^(?:\d{3}|VRB)(?P<speed>\d{2,3})(?:G\d{2,3})?KT$`)

// DecodeWind classifies the report's wind speed. Every wind group overwrites
// the previous result, so the last one in token order wins. With no wind
// group the tier is Normal.
func DecodeWind(tokens []Token) (SeverityTier, error) {
	tier := Normal
	for _, tok := range tokens {
		if !isWindGroup(tok.Text) {
			continue
		}
		speed, ok := windSpeed(tok.Text)
		if !ok {
			return Normal, decodeErr(FieldWind, tok)
		}
		tier = windTier(speed)
	}
	return tier, nil
}

// isWindGroup reports whether "KT" appears right after a digit. Station
// identifiers like KTGP or KLKT fail this check.
func isWindGroup(s string) bool {
	i := strings.Index(s, "KT")
	return i > 0 && isDigit(s[i-1])
}

func windSpeed(s string) (int, bool) {
	m := windRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	speed, err := strconv.Atoi(m[windRe.SubexpIndex("speed")])
	if err != nil {
		return 0, false
	}
	return speed, true
}

func windTier(knots int) SeverityTier {
	switch {
	case knots < 15:
		return Normal
	case knots < 20:
		return Marginal
	case knots < 25:
		return Instrument
	default:
		return LowInstrument
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
