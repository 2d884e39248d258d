// Package domain decodes METAR aviation weather reports into flight categories.
//
// # Data Source
//
// Reports come from the NWS station files published at
// https://tgftp.nws.noaa.gov/data/observations/metar/stations/. Each file holds
// an observation timestamp line followed by the raw report, e.g.
//
//	2024/03/05 12:56
//	KSFO 051256Z 28011KT 10SM SCT110 BKN180 11/06 A3001 RMK AO2
//
// Fetching lives in the noaa adapter; this package only sees text.
//
// # Report Header
//
// A leading station file timestamp, a METAR or SPECI keyword and the station
// identifier are consumed before decoding, so identifiers such as KBKN or ISM
// are never read as ceiling or visibility groups.
//
// # Decoded Groups
//
// Only three groups are decoded, matching what the classification needs.
//
// Wind ("dddffKT", "dddffGggKT", "VRBffKT"):
//
//	The speed field ff (knots) follows the three-character direction.
//	Gusts are ignored. A "KT" not preceded by a digit belongs to a station
//	identifier such as KTGP or KLKT and is skipped.
//
// Ceiling ("BKNhhh", "OVChhh"):
//
//	hhh is the layer base in hundreds of feet. Layers are reported in
//	ascending order, so the first broken or overcast layer below 3000 ft
//	sets the ceiling tier. FEW and SCT layers never form a ceiling.
//
// Visibility (statute miles):
//
//	10SM, 3SM         whole miles
//	1/2SM, M1/4SM     fraction, M = "less than"
//	1 1/2SM           whole number token followed by a fraction token
//	1 SM              bare "SM" token, read as one mile
//	P6SM              P = "greater than"
//
//	The P and M qualifiers are dropped and the boundary value itself is used.
//
// # Flight Categories
//
// Each group maps to a [SeverityTier]; the station's category is the most
// severe of the three:
//
//	           Normal (VFR)  Marginal (MVFR)  Instrument (IFR)  LowInstrument (LIFR)
//	Wind       < 15 kt       < 20 kt          < 25 kt           ≥ 25 kt
//	Ceiling    ≥ 3000 ft     < 3000 ft        < 1000 ft         < 500 ft
//	Visibility > 5 SM        ≤ 5 SM           ≤ 3 SM            ≤ 1 SM
//
// # Stopping Rules
//
// The three decoders deliberately differ. Wind scans every token and the last
// wind group wins. Ceiling ignores later layers once a non-normal tier is set.
// Visibility stops at the first visibility group.
package domain
