package model

import "strings"

type Region string

const (
	RegionNA1  Region = "NA1"
	RegionEUW1 Region = "EUW1"
	RegionEUN1 Region = "EUN1"
	RegionKR   Region = "KR"
	RegionBR1  Region = "BR1"
	RegionJP1  Region = "JP1"
	RegionLA1  Region = "LA1"
	RegionLA2  Region = "LA2"
	RegionOC1  Region = "OC1"
	RegionTR1  Region = "TR1"
	RegionRU   Region = "RU"

	DefaultRegion = RegionNA1
)

type regionInfo struct {
	label     string
	continent string
}

var regions = map[Region]regionInfo{
	RegionNA1:  {label: "North America", continent: "americas"},
	RegionEUW1: {label: "Europe West", continent: "europe"},
	RegionEUN1: {label: "Europe Nordic & East", continent: "europe"},
	RegionKR:   {label: "Korea", continent: "asia"},
	RegionBR1:  {label: "Brazil", continent: "americas"},
	RegionJP1:  {label: "Japan", continent: "asia"},
	RegionLA1:  {label: "Latin America North", continent: "americas"},
	RegionLA2:  {label: "Latin America South", continent: "americas"},
	RegionOC1:  {label: "Oceania", continent: "sea"},
	RegionTR1:  {label: "Turkey", continent: "europe"},
	RegionRU:   {label: "Russia", continent: "europe"},
}

// Regions lists the selectable regions in display order.
func Regions() []Region {
	return []Region{
		RegionNA1, RegionEUW1, RegionEUN1, RegionKR, RegionBR1, RegionJP1,
		RegionLA1, RegionLA2, RegionOC1, RegionTR1, RegionRU,
	}
}

// ParseRegion normalizes user input. Unknown values fall back to DefaultRegion.
func ParseRegion(value string) Region {
	r := Region(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := regions[r]; ok {
		return r
	}
	return DefaultRegion
}

func (r Region) Valid() bool {
	_, ok := regions[r]
	return ok
}

// Platform is the routing value for platform-scoped endpoints (summoner, spectator).
func (r Region) Platform() string {
	if !r.Valid() {
		return strings.ToLower(string(DefaultRegion))
	}
	return strings.ToLower(string(r))
}

// Continent is the routing value for regional endpoints (account, match).
func (r Region) Continent() string {
	if info, ok := regions[r]; ok {
		return info.continent
	}
	return regions[DefaultRegion].continent
}

func (r Region) Label() string {
	if info, ok := regions[r]; ok {
		return info.label
	}
	return string(r)
}

// DefaultTagline is used when a search omits the tag line.
func (r Region) DefaultTagline() string {
	if !r.Valid() {
		return string(DefaultRegion)
	}
	return string(r)
}
