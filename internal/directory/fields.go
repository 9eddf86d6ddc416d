package directory

// Option is a choice in a search field. Label is a localization key, or a
// literal when the value needs no translation.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SearchField is a filter the hub adds to the directory search form.
type SearchField struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []Option `json:"options"`
}

// PracticeAreas are the fixed practice-area slugs.
var PracticeAreas = []string{
	"criminal-law",
	"family-law",
	"personal-injury",
	"business-law",
	"estate-planning",
	"immigration-law",
	"real-estate",
	"employment-law",
	"tax-law",
	"bankruptcy",
}

// LicenseStatuses are the values a listing's license status may take.
var LicenseStatuses = []string{"active", "inactive", "suspended"}

// SearchFields returns the practice area, license status and minimum rating
// filters. Each starts with an empty "any" option.
func SearchFields() []SearchField {
	practice := []Option{{Value: "", Label: "search.all_practice_areas"}}
	for _, slug := range PracticeAreas {
		practice = append(practice, Option{Value: slug, Label: "practice." + slug})
	}

	license := []Option{{Value: "", Label: "search.all_statuses"}}
	for _, s := range LicenseStatuses {
		license = append(license, Option{Value: s, Label: "license." + s})
	}

	rating := []Option{{Value: "", Label: "search.all_ratings"}}
	for _, n := range []string{"1", "2", "3", "4", "5"} {
		rating = append(rating, Option{Value: n, Label: "rating." + n})
	}

	return []SearchField{
		{Name: "practice_areas", Label: "search.practice_areas", Type: "select", Placeholder: "search.all_practice_areas", Options: practice},
		{Name: "license_status", Label: "search.license_status", Type: "select", Options: license},
		{Name: "min_rating", Label: "search.min_rating", Type: "select", Options: rating},
	}
}
