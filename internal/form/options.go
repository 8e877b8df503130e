package form

import (
	"github.com/cisd/recruitment-portal/internal/application"
)

const Other = "Other"

type Kind string

const (
	KindSaudi      Kind = "saudi"
	KindItaly      Kind = "italy"
	KindHealthcare Kind = "healthcare"
)

// Definition is the static shape of one category form: which struct backs
// it, its choices and its age limits.
type Definition struct {
	Category application.Category
	Kind     Kind
	Heading  string
	Options  []string
	AgeMin   int
	AgeMax   int
}

var (
	Genders   = []string{"Male", "Female"}
	YesNo     = []string{"Yes", "No"}
	Relocate  = []string{"Yes", "No", Other}
	Cities    = []string{"Islamabad", "Lahore", Other}
	Programs  = []string{"O.S.S. - Healthcare Assistant", "O.S.S.+S. – Specialized Healthcare Assistant", "O.S.A. - Certified Social Care Operator", Other}
	Referrals = []string{"Facebook", "Instagram", "TikTok", "Friend / Family", "Agent", Other}
)

var definitions = map[application.Category]Definition{
	application.CategoryHospitality: {
		Kind:    KindSaudi,
		Heading: "Hospitality Job Application 2025-26 (Saudi Arabia)",
		Options: []string{"Hostess", "Barista", "Waiter/Waitress", "Room Attendant", "Laundry Attendant", "Commi III", "Steward", "Bellman", Other},
	},
	application.CategoryDomestic: {
		Kind:    KindSaudi,
		Heading: "Domestic Worker Job Application 2025-26 (Saudi Arabia)",
		Options: []string{"Domestic Worker", "Household Help", "Nanny / Babysitter", "Private Driver", "Cook / Chef", "Caregiver (Elderly / Special Needs)", "Cleaner (Hourly)", Other},
	},
	application.CategoryCivil: {
		Kind:    KindSaudi,
		Heading: "Civil Workers Job Application 2025-26 (Saudi Arabia)",
		Options: []string{"Mason", "Shuttering Carpenter", "Steel Fixer", "Electrician", "Plumber", "Scaffolder", Other},
	},
	application.CategoryGermany: {
		Kind:    KindSaudi,
		Heading: "Germany Internship Application 2025-26",
		Options: []string{"Hotel Management Intern", "Culinary Intern", "Nursing Intern", "Logistics Intern", Other},
	},
	application.CategoryMechanical: {
		Kind:    KindSaudi,
		Heading: "Mechanical Workers Job Application 2025-26",
		Options: []string{"Multi Weilders", "Fabricators", "Fitters", Other},
		AgeMax:  40,
	},
	application.CategoryPipeFitter: {
		Kind:    KindSaudi,
		Heading: "Pipe Fitter Job Application 2025-26 (Saudi Arabia)",
		Options: []string{"Pipe Fitter", "Pipe Fabricator", "Pipe Welder", Other},
	},
	application.CategoryTailorIron: {
		Kind:    KindSaudi,
		Heading: "Tailor and Ironer Job Application 2025-26 (Saudi Arabia)",
		Options: []string{"Tailor", "Ironer", Other},
	},
	application.CategoryHelper: {
		Kind:    KindSaudi,
		Heading: "Helper Jobs Application 2025-26 (Saudi Arabia)",
		Options: []string{"Painter", "Tiler", "Woodworker", "General Helper", Other},
	},
	application.CategoryItaly: {
		Kind:    KindItaly,
		Heading: "Healthcare & Hospitality Courses in Italy",
		Options: []string{
			"O.S.S.+S.-Specialized Healthcare Assistant",
			"Social Care Operator",
			"O.S.S.-Healthcare Assistant",
			"Food & Beverage Manager",
			"Kitchen Operator - Cook",
			"Bar Services Operator - Bartender",
			"Dining Room Service Operator",
			"Meat Processing Worker - Butcher",
			"Dining Room Technician - Maitre",
			"Artisanal Bakery Products Operator (Baker)",
			"Pastry Chef",
			"Architectural Restoration Site Management Technician",
			"Excavation, Earthmoving & Demolition Machinery Operator",
			"Construction Carpentry Operator",
			"Mechanical Operator",
			"Plasterer, Decorative Painter & Gilder (Historical Buildings)",
			"CNC Machine Operator",
			"Building Finishes Operator - Flooring & Tiling",
			"Jewelry Designer",
			"Topographic Surveying Technician",
			"Crane & Lifting Equipment Operator",
			"Electrical Systems Installation & Maintenance Operator",
			"Industrial Resin Applicator",
			"Garment Assembly Operator",
			Other,
		},
	},
	application.CategoryHealthcare: {
		Kind:    KindHealthcare,
		Heading: "Healthcare Programs in Italy",
		Options: Programs,
	},
}

func Lookup(c application.Category) (Definition, bool) {
	d, ok := definitions[c]
	if !ok {
		return Definition{}, false
	}
	d.Category = c
	if d.AgeMin == 0 {
		d.AgeMin = 18
	}
	if d.AgeMax == 0 {
		d.AgeMax = 65
	}
	return d, true
}

// Definitions lists every form in landing page order.
func Definitions() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, c := range application.Categories {
		if d, ok := Lookup(c); ok {
			out = append(out, d)
		}
	}
	return out
}
