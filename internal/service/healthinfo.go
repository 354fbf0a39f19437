package service

import "strings"

// VaccinationProofMarker is the fixed marker embedding a vaccination-proof
// URL inside a listing's free-text health info. The URL runs from the first
// non-space character after the marker to the next whitespace.
//
// TODO: promote the proof URL to a first-class listing column and migrate
// existing health-info text.
const VaccinationProofMarker = "Vaccination proof:"

// ExtractVaccinationProofURL returns the vaccination-proof URL embedded in
// healthInfo, or "" when the marker is absent or carries no URL. Pure and
// idempotent; the first marker wins.
func ExtractVaccinationProofURL(healthInfo string) string {
	idx := strings.Index(healthInfo, VaccinationProofMarker)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimLeft(healthInfo[idx+len(VaccinationProofMarker):], " \t")
	if end := strings.IndexAny(rest, " \t\r\n"); end >= 0 {
		rest = rest[:end]
	}
	if !strings.HasPrefix(rest, "http://") && !strings.HasPrefix(rest, "https://") {
		return ""
	}
	return rest
}
