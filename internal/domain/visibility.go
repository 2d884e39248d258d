package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// fractionRe matches "1/2SM", "3/16SM" after the P/M qualifier is removed.
	fractionRe = regexp.MustCompile(`^(?P<num>\d{1,2})/(?P<den>\d{1,2})SM$`)

	// milesRe matches whole statute miles: "3SM", "10SM".
	milesRe = regexp.MustCompile(`^(?P<miles>\d{1,2})SM$`)

	// stationIDRe matches a four-letter ICAO identifier such as KISM.
	stationIDRe = regexp.MustCompile(`^[A-Z]{4}$`)
)

// DecodeVisibility classifies the first visibility group in the report and
// ignores any later ones. With no visibility group the tier is Normal.
func DecodeVisibility(tokens []Token) (SeverityTier, error) {
	return decodeVisibility(tokens, "")
}

// decodeVisibility skips tokens equal to station so that the report's own
// identifier is never read as a visibility group.
func decodeVisibility(tokens []Token, station string) (SeverityTier, error) {
	for i, tok := range tokens {
		if !isVisibilityGroup(tok.Text, station) {
			continue
		}
		miles, ok := visibilityMiles(tok.Text, tokens[:i])
		if !ok {
			return Normal, decodeErr(FieldVisibility, tok)
		}
		return visibilityTier(miles), nil
	}
	return Normal, nil
}

func isVisibilityGroup(s, station string) bool {
	if !strings.HasSuffix(s, "SM") {
		return false
	}
	if station != "" && s == station {
		return false
	}
	return !stationIDRe.MatchString(s)
}

// visibilityMiles reads the statute miles of a visibility group. preceding
// holds the tokens before it, used for the "1 1/2SM" form.
func visibilityMiles(s string, preceding []Token) (float64, bool) {
	s = stripQualifier(s)

	if strings.Contains(s, "/") {
		m := fractionRe.FindStringSubmatch(s)
		if m == nil {
			return 0, false
		}
		num, errN := strconv.Atoi(m[fractionRe.SubexpIndex("num")])
		den, errD := strconv.Atoi(m[fractionRe.SubexpIndex("den")])
		if errN != nil || errD != nil || den == 0 {
			return 0, false
		}
		miles := float64(num) / float64(den)
		if len(preceding) > 0 {
			// A non-numeric previous token just means there is no whole part.
			if whole, err := strconv.Atoi(preceding[len(preceding)-1].Text); err == nil {
				miles += float64(whole)
			}
		}
		return miles, true
	}

	// "1 SM": the number sits in its own token.
	if len(s) <= 2 {
		return 1.0, true
	}

	m := milesRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	miles, err := strconv.Atoi(m[milesRe.SubexpIndex("miles")])
	if err != nil {
		return 0, false
	}
	return float64(miles), true
}

// stripQualifier drops a single leading P (greater than) or M (less than).
func stripQualifier(s string) string {
	if strings.HasPrefix(s, "P") || strings.HasPrefix(s, "M") {
		return s[1:]
	}
	return s
}

func visibilityTier(miles float64) SeverityTier {
	switch {
	case miles <= 1:
		return LowInstrument
	case miles <= 3:
		return Instrument
	case miles <= 5:
		return Marginal
	default:
		return Normal
	}
}
