package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// ceilingRe captures the layer height in hundreds of feet after a broken or
// overcast marker, e.g. "BKN008", "OVC020CB".
var ceilingRe = regexp.MustCompile(`^(?:OVC|BKN)(?P<height>\d{3})`)

// DecodeCeiling classifies the lowest broken or overcast layer. Only the first
// layer that yields a non-Normal tier counts; later layers are not examined
// once that happens. Layers at or above 3000 ft leave the tier Normal and the
// scan continues.
func DecodeCeiling(tokens []Token) (SeverityTier, error) {
	tier := Normal
	for _, tok := range tokens {
		if tier != Normal {
			break
		}
		if !isCeilingGroup(tok.Text) {
			continue
		}
		height, ok := ceilingHeight(tok.Text)
		if !ok {
			return Normal, decodeErr(FieldCeiling, tok)
		}
		tier = ceilingTier(height)
	}
	return tier, nil
}

// isCeilingGroup reports whether s opens with a broken or overcast marker.
// Station identifiers such as KBKN fail this check.
func isCeilingGroup(s string) bool {
	return strings.HasPrefix(s, "OVC") || strings.HasPrefix(s, "BKN")
}

func ceilingHeight(s string) (int, bool) {
	m := ceilingRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[ceilingRe.SubexpIndex("height")])
	if err != nil {
		return 0, false
	}
	return h, true
}

// ceilingTier maps a height in hundreds of feet to a tier.
func ceilingTier(hundredsFt int) SeverityTier {
	switch {
	case hundredsFt < 5:
		return LowInstrument
	case hundredsFt < 10:
		return Instrument
	case hundredsFt < 30:
		return Marginal
	default:
		return Normal
	}
}
