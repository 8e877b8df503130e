package application

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type Category string

const (
	CategoryHospitality Category = "hospitality"
	CategoryGermany     Category = "germany"
	CategoryCivil       Category = "civil"
	CategoryDomestic    Category = "domestic"
	CategoryTailorIron  Category = "tailoriron"
	CategoryPipeFitter  Category = "pipefitter"
	CategoryMechanical  Category = "mechanical"
	CategoryHelper      Category = "helper"
	CategoryItaly       Category = "italy-jobs"
	CategoryHealthcare  Category = "healthcare"
)

// Categories is the dashboard order of job categories.
var Categories = []Category{
	CategoryHospitality,
	CategoryGermany,
	CategoryCivil,
	CategoryDomestic,
	CategoryTailorIron,
	CategoryPipeFitter,
	CategoryHelper,
	CategoryMechanical,
	CategoryItaly,
	CategoryHealthcare,
}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

func (c Category) Title() string {
	switch c {
	case CategoryHospitality:
		return "Hospitality Jobs"
	case CategoryGermany:
		return "Germany Internship"
	case CategoryCivil:
		return "Civil Workers"
	case CategoryDomestic:
		return "Domestic Jobs"
	case CategoryTailorIron:
		return "Tailor and Ironer"
	case CategoryPipeFitter:
		return "Pipe Fitter"
	case CategoryMechanical:
		return "Mechanical Workers"
	case CategoryHelper:
		return "Helper Jobs in Saudi Arabia"
	case CategoryItaly:
		return "Healthcare & Hospitality Courses in Italy"
	case CategoryHealthcare:
		return "Healthcare Programs in Italy"
	}
	return string(c)
}

func (c Category) Description() string {
	switch c {
	case CategoryHospitality:
		return "Apply for positions in hospitality industry"
	case CategoryGermany:
		return "Apply for internship positions in Germany"
	case CategoryCivil:
		return "Apply for civil construction positions in Saudi Arabia"
	case CategoryDomestic:
		return "Apply for domestic helper positions"
	case CategoryTailorIron, CategoryPipeFitter:
		return "Apply for the jobs in Saudia"
	case CategoryMechanical:
		return "Apply for the jobs in abroad"
	case CategoryHelper:
		return "Painter, Tiler, Woodworker & Helper Jobs in Saudi Arabia"
	case CategoryItaly:
		return "Professional Careers in Italy Begin Here, With Accredited Training + Job Support."
	case CategoryHealthcare:
		return "Accredited healthcare assistant programs in Italy"
	}
	return ""
}

// Age accepts either a JSON number or a numeric string, the backend stores both.
type Age int

func (a *Age) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "" || raw == "null" {
		*a = 0
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*a = 0
		return nil
	}
	*a = Age(int(n))
	return nil
}

type Application struct {
	ID                string    `json:"_id"`
	JobTitle          Category  `json:"jobtitle"`
	FullName          string    `json:"fullName"`
	Age               Age       `json:"age"`
	Gender            string    `json:"gender"`
	CurrentResidence  string    `json:"currentResidence"`
	ContactNumber     string    `json:"contactNumber"`
	Email             string    `json:"email"`
	PassportNumber    string    `json:"passportNumber"`
	Positions         []string  `json:"positions,omitempty"`
	Position          string    `json:"position,omitempty"`
	OtherPosition     string    `json:"otherPosition,omitempty"`
	Program           string    `json:"program,omitempty"`
	OtherProgram      string    `json:"otherProgram,omitempty"`
	Experience        string    `json:"experience,omitempty"`
	WillingToRelocate string    `json:"willingToRelocate,omitempty"`
	OtherRelocate     string    `json:"otherRelocate,omitempty"`
	PreferredCity     string    `json:"preferredCity,omitempty"`
	OtherCity         string    `json:"otherCity,omitempty"`
	City              string    `json:"city,omitempty"`
	WorkedInSaudi     string    `json:"workedInSaudi,omitempty"`
	WhyWorkInSaudi    string    `json:"whyWorkInSaudi,omitempty"`
	WorkedInItaly     string    `json:"workedInItaly,omitempty"`
	WhyWorkInItaly    string    `json:"whyWorkInItaly,omitempty"`
	Reference         string    `json:"reference,omitempty"`
	HeardAboutUs      string    `json:"heardAboutUs,omitempty"`
	Status            Status    `json:"status"`
	Comment           string    `json:"comment,omitempty"`
	ReviewNotes       string    `json:"reviewNotes,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// PositionText is the comma separated list of requested positions, falling
// back to the single position field used by the single-select forms.
func (a Application) PositionText() string {
	if len(a.Positions) > 0 {
		return strings.Join(a.Positions, ", ")
	}
	if a.Position != "" {
		return a.Position
	}
	return a.Program
}

// Page is the server-side paginated list shape returned by the backend.
type Page struct {
	Applications      []Application `json:"applications"`
	CurrentPage       int           `json:"currentPage"`
	TotalPages        int           `json:"totalPages"`
	TotalApplications int           `json:"totalApplications"`
}

// DecodeList tolerates a bare array or an {"applications": [...]} wrapper.
func DecodeList(b []byte) ([]Application, error) {
	var list []Application
	if err := json.Unmarshal(b, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Applications []Application `json:"applications"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Applications, nil
}
