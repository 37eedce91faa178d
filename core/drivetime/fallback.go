package drivetime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Bucket maps a house-number delta below Limit to a minute estimate.
type Bucket struct {
	Limit   int // exclusive upper bound; 0 means catch-all
	Minutes int
}

// Heuristic holds the tuned minute buckets for the offline estimate.
// The values are heuristics carried over from field experience, not
// measurements; treat them as tunable constants.
type Heuristic struct {
	// SameStreet buckets apply when both addresses normalize to the
	// same street name and type.
	SameStreet []Bucket `json:"same_street"`
	// SharedNameMinutes applies when different streets share a name
	// token longer than three characters.
	SharedNameMinutes int `json:"shared_name_minutes"`
	// SameTypeMinutes applies for a matching street type with a small
	// house-number delta.
	SameTypeMinutes int `json:"same_type_minutes"`
	// SameTypeDeltaLimit bounds the delta for SameTypeMinutes.
	SameTypeDeltaLimit int `json:"same_type_delta_limit"`
	// Unrelated buckets apply when nothing else matches.
	Unrelated []Bucket `json:"unrelated"`
}

// DefaultHeuristic returns the tuned defaults.
func DefaultHeuristic() Heuristic {
	return Heuristic{
		SameStreet: []Bucket{
			{Limit: 50, Minutes: 2},
			{Limit: 200, Minutes: 3},
			{Limit: 400, Minutes: 5},
			{Minutes: 7},
		},
		SharedNameMinutes:  8,
		SameTypeMinutes:    10,
		SameTypeDeltaLimit: 200,
		Unrelated: []Bucket{
			{Limit: 100, Minutes: 8},
			{Limit: 300, Minutes: 12},
			{Limit: 500, Minutes: 15},
			{Limit: 1000, Minutes: 18},
			{Limit: 2000, Minutes: 22},
			{Minutes: 25},
		},
	}
}

var streetTypes = map[string]string{
	"lane": "lane", "ln": "lane",
	"drive": "drive", "dr": "drive",
	"street": "street", "st": "street",
	"road": "road", "rd": "road",
	"avenue": "avenue", "ave": "avenue",
	"circle": "circle", "cir": "circle",
	"court": "court", "ct": "court",
	"way": "way",
	"boulevard": "boulevard", "blvd": "boulevard",
}

var houseNumberRe = regexp.MustCompile(`^\s*(\d+)\b`)

type parsedAddress struct {
	houseNumber int
	streetName  string // lowercased, space-joined name tokens
	streetType  string // normalized full form, "" when absent
}

// parseAddress splits "120 Oak Lane" style addresses. The street type
// token terminates the street name; anything after it (city, state) is
// ignored.
func parseAddress(addr string) parsedAddress {
	var p parsedAddress
	if m := houseNumberRe.FindStringSubmatch(addr); m != nil {
		p.houseNumber, _ = strconv.Atoi(m[1])
		addr = addr[len(m[0]):]
	}
	var nameTokens []string
	for _, tok := range strings.Fields(addr) {
		clean := strings.ToLower(strings.Trim(tok, ".,"))
		if full, ok := streetTypes[clean]; ok {
			p.streetType = full
			break
		}
		nameTokens = append(nameTokens, clean)
	}
	p.streetName = strings.Join(nameTokens, " ")
	return p
}

func pickBucket(buckets []Bucket, delta int) int {
	for _, b := range buckets {
		if b.Limit == 0 || delta < b.Limit {
			return b.Minutes
		}
	}
	return 0
}

func sharesNameToken(a, b parsedAddress) bool {
	for _, ta := range strings.Fields(a.streetName) {
		if len(ta) <= 3 {
			continue
		}
		for _, tb := range strings.Fields(b.streetName) {
			if ta == tb {
				return true
			}
		}
	}
	return false
}

// Estimate returns the deterministic offline drive time between two
// addresses. It never fails and is symmetric in its inputs.
func (h Heuristic) Estimate(from, to string) DriveTime {
	a, b := parseAddress(from), parseAddress(to)
	delta := a.houseNumber - b.houseNumber
	if delta < 0 {
		delta = -delta
	}

	var minutes int
	switch {
	case a.streetName != "" && a.streetName == b.streetName && a.streetType == b.streetType:
		minutes = pickBucket(h.SameStreet, delta)
	case sharesNameToken(a, b):
		minutes = h.SharedNameMinutes
	case a.streetType != "" && a.streetType == b.streetType && delta < h.SameTypeDeltaLimit:
		minutes = h.SameTypeMinutes
	default:
		minutes = pickBucket(h.Unrelated, delta)
	}
	return DriveTime{
		DurationMinutes: minutes,
		DurationText:    fmt.Sprintf("%d min", minutes),
	}
}
