package models

// RegionCode is the Avito location slug used in search URLs.
type RegionCode string

const (
	RegionSaintPetersburg       RegionCode = "sankt-peterburg"
	RegionSaintPetersburgOblast RegionCode = "sankt_peterburg_i_lo"
)

var regionNames = map[RegionCode]string{
	RegionSaintPetersburg:       "Saint Petersburg",
	RegionSaintPetersburgOblast: "Saint Petersburg and Leningrad Oblast",
}

// RegionChoice is a front-end option that expands to a fixed region list.
type RegionChoice struct {
	Label   string
	Regions []RegionCode
}

// RegionChoices lists the options offered when a user picks where to track.
var RegionChoices = []RegionChoice{
	{Label: "Saint Petersburg", Regions: []RegionCode{RegionSaintPetersburg}},
	{Label: "Saint Petersburg and Leningrad Oblast", Regions: []RegionCode{RegionSaintPetersburgOblast}},
	{Label: "Both regions", Regions: []RegionCode{RegionSaintPetersburg, RegionSaintPetersburgOblast}},
}

// RegionName returns the display name for code, or the code itself when unknown.
func RegionName(code RegionCode) string {
	if name, ok := regionNames[code]; ok {
		return name
	}
	return string(code)
}

// LookupRegionChoice finds the choice with the given label.
func LookupRegionChoice(label string) (RegionChoice, bool) {
	for _, c := range RegionChoices {
		if c.Label == label {
			return c, true
		}
	}
	return RegionChoice{}, false
}
