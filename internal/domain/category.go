package domain

import (
	"fmt"
	"regexp"
)

var (
	// reportStationRe matches the identifier that opens a report: "KSFO", "ISM".
	reportStationRe = regexp.MustCompile(`^[A-Z][A-Z0-9]{2,3}$`)

	// fileTimestampRe matches the date and time tokens of an NWS station file
	// header line, e.g. "2024/03/05 12:56".
	fileTimestampRe = regexp.MustCompile(`^(?:\d{4}/\d{2}/\d{2}|\d{2}:\d{2})$`)
)

// FlightCategory is the decoded result for one station. Category is always
// the most severe of the three field tiers.
type FlightCategory struct {
	Wind       SeverityTier `json:"wind"`
	Ceiling    SeverityTier `json:"ceiling"`
	Visibility SeverityTier `json:"visibility"`
	Category   SeverityTier `json:"category"`
}

// Combine returns the most severe of the three field tiers.
func Combine(wind, ceiling, visibility SeverityTier) SeverityTier {
	return MaxTier(wind, ceiling, visibility)
}

// Classify decodes a report body into a flight category. A decode error means
// this report could not be classified; it says nothing about other reports.
func Classify(body string) (FlightCategory, error) {
	return classifyTokens(Tokenize(body), "")
}

// ClassifyReport is Classify with the report's station identifier excluded
// from visibility decoding.
func ClassifyReport(r RawReport) (FlightCategory, error) {
	fc, err := classifyTokens(Tokenize(r.Body), r.Station)
	if err != nil {
		return FlightCategory{}, fmt.Errorf("classify %s: %w", r.Station, err)
	}
	return fc, nil
}

func classifyTokens(tokens []Token, station string) (FlightCategory, error) {
	tokens = weatherTokens(tokens)
	wind, err := DecodeWind(tokens)
	if err != nil {
		return FlightCategory{}, err
	}
	ceiling, err := DecodeCeiling(tokens)
	if err != nil {
		return FlightCategory{}, err
	}
	visibility, err := decodeVisibility(tokens, station)
	if err != nil {
		return FlightCategory{}, err
	}
	return FlightCategory{
		Wind:       wind,
		Ceiling:    ceiling,
		Visibility: visibility,
		Category:   Combine(wind, ceiling, visibility),
	}, nil
}

// weatherTokens drops the report header: a station file timestamp, a METAR or
// SPECI keyword, and the station identifier. The identifier is consumed here
// so that codes like KBKN or ISM are never decoded as weather groups.
func weatherTokens(tokens []Token) []Token {
	i := 0
	for i < len(tokens) && fileTimestampRe.MatchString(tokens[i].Text) {
		i++
	}
	if i < len(tokens) && (tokens[i].Text == "METAR" || tokens[i].Text == "SPECI") {
		i++
	}
	if i < len(tokens) && isStationID(tokens[i].Text) {
		i++
	}
	return tokens[i:]
}

// isStationID reports whether s is shaped like an identifier and not like a
// weather group such as P6SM or OVC.
func isStationID(s string) bool {
	if !reportStationRe.MatchString(s) {
		return false
	}
	return !isWindGroup(s) && !isCeilingGroup(s) && !milesRe.MatchString(stripQualifier(s))
}
