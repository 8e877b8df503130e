package form

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/cisd/recruitment-portal/internal/application"
	"github.com/cisd/recruitment-portal/internal/metrics"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
)

var (
	emailRe = regexp.MustCompile(`\S+@\S+\.\S+`)
	policy  = bluemonday.StrictPolicy()
)

// Errors maps a field's JSON name to its validation message.
type Errors map[string]string

func (e Errors) Get(field string) string {
	return e[field]
}

type ValidationError struct {
	Fields Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

type Form interface {
	Definition() Definition
	Validate() Errors
	Application() application.Application
}

type Personal struct {
	FullName         string
	Age              string
	Gender           string
	CurrentResidence string
	ContactNumber    string
	Email            string
	PassportNumber   string
}

func (p Personal) validate(errs Errors, def Definition) {
	if strings.TrimSpace(p.FullName) == "" {
		errs["fullName"] = "Full name is required"
	}
	age, err := strconv.Atoi(strings.TrimSpace(p.Age))
	if err != nil || age < def.AgeMin || age > def.AgeMax {
		errs["age"] = fmt.Sprintf("Age must be between %d and %d", def.AgeMin, def.AgeMax)
	}
	if p.Gender == "" {
		errs["gender"] = "Gender is required"
	}
	if strings.TrimSpace(p.CurrentResidence) == "" {
		errs["currentResidence"] = "Current residence is required"
	}
	if strings.TrimSpace(p.ContactNumber) == "" {
		errs["contactNumber"] = "Contact number is required"
	}
	if email := strings.TrimSpace(p.Email); email == "" || !emailRe.MatchString(email) {
		errs["email"] = "Valid email is required"
	}
	if strings.TrimSpace(p.PassportNumber) == "" {
		errs["passportNumber"] = "Passport number is required"
	}
}

func (p Personal) fill(a *application.Application) {
	age, _ := strconv.Atoi(strings.TrimSpace(p.Age))
	a.FullName = clean(p.FullName)
	a.Age = application.Age(age)
	a.Gender = p.Gender
	a.CurrentResidence = clean(p.CurrentResidence)
	a.ContactNumber = clean(p.ContactNumber)
	a.Email = strings.TrimSpace(p.Email)
	a.PassportNumber = clean(p.PassportNumber)
}

type Relocation struct {
	WillingToRelocate string
	OtherRelocate     string
	PreferredCity     string
	OtherCity         string
}

func (r Relocation) validate(errs Errors, withOther bool) {
	if r.WillingToRelocate == "" {
		errs["willingToRelocate"] = "This field is required"
	}
	if withOther && r.WillingToRelocate == Other && strings.TrimSpace(r.OtherRelocate) == "" {
		errs["otherRelocate"] = "Please specify"
	}
	if r.PreferredCity == "" {
		errs["preferredCity"] = "Preferred city is required"
	}
	if r.PreferredCity == Other && strings.TrimSpace(r.OtherCity) == "" {
		errs["otherCity"] = "Please specify city"
	}
}

// City is the single city the dashboard filters on.
func (r Relocation) City() string {
	if r.PreferredCity == Other {
		return clean(r.OtherCity)
	}
	return r.PreferredCity
}

func (r Relocation) fill(a *application.Application) {
	a.WillingToRelocate = r.WillingToRelocate
	a.OtherRelocate = clean(r.OtherRelocate)
	a.PreferredCity = r.PreferredCity
	a.OtherCity = clean(r.OtherCity)
	a.City = r.City()
}

// SaudiForm backs every multi-select category placing workers in Saudi
// Arabia and the mechanical variant with its lower age limit.
type SaudiForm struct {
	def Definition
	Personal
	Positions     []string
	OtherPosition string
	Relocation
	WorkedInSaudi  string
	WhyWorkInSaudi string
	HeardAboutUs   string
}

func (f *SaudiForm) Definition() Definition {
	return f.def
}

func (f *SaudiForm) HasPosition(p string) bool {
	for _, pos := range f.Positions {
		if pos == p {
			return true
		}
	}
	return false
}

func (f *SaudiForm) Validate() Errors {
	errs := Errors{}
	f.Personal.validate(errs, f.def)
	if len(f.Positions) == 0 {
		errs["positions"] = "At least one position is required"
	}
	if f.HasPosition(Other) && strings.TrimSpace(f.OtherPosition) == "" {
		errs["otherPosition"] = "Please specify position"
	}
	f.Relocation.validate(errs, true)
	if f.WorkedInSaudi == "" {
		errs["workedInSaudi"] = "This field is required"
	}
	if strings.TrimSpace(f.WhyWorkInSaudi) == "" {
		errs["whyWorkInSaudi"] = "Please explain why you want to work in Saudi Arabia"
	}
	return errs
}

func (f *SaudiForm) Application() application.Application {
	a := application.Application{JobTitle: f.def.Category, Status: application.StatusPending}
	f.Personal.fill(&a)
	a.Positions = append([]string{}, f.Positions...)
	a.OtherPosition = clean(f.OtherPosition)
	f.Relocation.fill(&a)
	a.WorkedInSaudi = f.WorkedInSaudi
	a.WhyWorkInSaudi = clean(f.WhyWorkInSaudi)
	a.HeardAboutUs = clean(f.HeardAboutUs)
	return a
}

// ItalyForm is the single position Italy training and placement form.
type ItalyForm struct {
	def Definition
	Personal
	Position      string
	OtherPosition string
	Relocation
	WorkedInSaudi  string
	WhyWorkInSaudi string
	Reference      string
}

func (f *ItalyForm) Definition() Definition {
	return f.def
}

func (f *ItalyForm) Validate() Errors {
	errs := Errors{}
	f.Personal.validate(errs, f.def)
	if f.Position == "" {
		errs["position"] = "Please select a position"
	}
	if f.Position == Other && strings.TrimSpace(f.OtherPosition) == "" {
		errs["otherPosition"] = "Please specify position"
	}
	f.Relocation.validate(errs, true)
	if f.WorkedInSaudi == "" {
		errs["workedInSaudi"] = "This field is required"
	}
	if strings.TrimSpace(f.WhyWorkInSaudi) == "" {
		errs["whyWorkInSaudi"] = "Please explain why you want to work in Saudi Arabia"
	}
	return errs
}

func (f *ItalyForm) Application() application.Application {
	a := application.Application{JobTitle: f.def.Category, Status: application.StatusPending}
	f.Personal.fill(&a)
	a.Position = f.Position
	a.OtherPosition = clean(f.OtherPosition)
	f.Relocation.fill(&a)
	a.WorkedInSaudi = f.WorkedInSaudi
	a.WhyWorkInSaudi = clean(f.WhyWorkInSaudi)
	a.Reference = clean(f.Reference)
	return a
}

// HealthcareForm picks one accredited program instead of positions.
type HealthcareForm struct {
	def Definition
	Personal
	Program      string
	OtherProgram string
	Experience   string
	Relocation
	WorkedInItaly  string
	WhyWorkInItaly string
	Reference      string
}

func (f *HealthcareForm) Definition() Definition {
	return f.def
}

func (f *HealthcareForm) Validate() Errors {
	errs := Errors{}
	f.Personal.validate(errs, f.def)
	if f.Program == "" {
		errs["program"] = "Please select a healthcare program"
	}
	if f.Program == Other && strings.TrimSpace(f.OtherProgram) == "" {
		errs["otherProgram"] = "Please specify program"
	}
	f.Relocation.validate(errs, false)
	if f.WorkedInItaly == "" {
		errs["workedInItaly"] = "This field is required"
	}
	if strings.TrimSpace(f.WhyWorkInItaly) == "" {
		errs["whyWorkInItaly"] = "Please explain why you want to work in Italy"
	}
	return errs
}

func (f *HealthcareForm) Application() application.Application {
	a := application.Application{JobTitle: f.def.Category, Status: application.StatusPending}
	f.Personal.fill(&a)
	a.Program = f.Program
	a.OtherProgram = clean(f.OtherProgram)
	a.Experience = clean(f.Experience)
	f.Relocation.fill(&a)
	a.WorkedInItaly = f.WorkedInItaly
	a.WhyWorkInItaly = clean(f.WhyWorkInItaly)
	a.Reference = clean(f.Reference)
	return a
}

// clean strips markup from free text. The result is stored as plain text so
// entities escaped by the policy are decoded again.
func clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// New returns an empty form for the category.
func New(c application.Category) (Form, error) {
	return Decode(c, url.Values{})
}

// Decode reads a posted form into the typed struct for its category.
func Decode(c application.Category, v url.Values) (Form, error) {
	def, ok := Lookup(c)
	if !ok {
		return nil, errors.Errorf("unknown job category %q", c)
	}
	personal := Personal{
		FullName:         v.Get("fullName"),
		Age:              v.Get("age"),
		Gender:           v.Get("gender"),
		CurrentResidence: v.Get("currentResidence"),
		ContactNumber:    v.Get("contactNumber"),
		Email:            v.Get("email"),
		PassportNumber:   v.Get("passportNumber"),
	}
	relocation := Relocation{
		WillingToRelocate: v.Get("willingToRelocate"),
		OtherRelocate:     v.Get("otherRelocate"),
		PreferredCity:     v.Get("preferredCity"),
		OtherCity:         v.Get("otherCity"),
	}
	switch def.Kind {
	case KindItaly:
		return &ItalyForm{
			def:            def,
			Personal:       personal,
			Position:       v.Get("position"),
			OtherPosition:  v.Get("otherPosition"),
			Relocation:     relocation,
			WorkedInSaudi:  v.Get("workedInSaudi"),
			WhyWorkInSaudi: v.Get("whyWorkInSaudi"),
			Reference:      v.Get("reference"),
		}, nil
	case KindHealthcare:
		return &HealthcareForm{
			def:            def,
			Personal:       personal,
			Program:        v.Get("program"),
			OtherProgram:   v.Get("otherProgram"),
			Experience:     v.Get("experience"),
			Relocation:     relocation,
			WorkedInItaly:  v.Get("workedInItaly"),
			WhyWorkInItaly: v.Get("whyWorkInItaly"),
			Reference:      v.Get("reference"),
		}, nil
	}
	return &SaudiForm{
		def:            def,
		Personal:       personal,
		Positions:      nonEmpty(v["positions"]),
		OtherPosition:  v.Get("otherPosition"),
		Relocation:     relocation,
		WorkedInSaudi:  v.Get("workedInSaudi"),
		WhyWorkInSaudi: v.Get("whyWorkInSaudi"),
		HeardAboutUs:   v.Get("heardAboutUs"),
	}, nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type Creator interface {
	CreateApplication(ctx context.Context, app application.Application) (application.Application, error)
}

// Submit validates f and posts it once. Invalid forms never reach the
// creator and come back as a *ValidationError.
func Submit(ctx context.Context, c Creator, f Form) (application.Application, error) {
	category := string(f.Definition().Category)
	if errs := f.Validate(); len(errs) > 0 {
		metrics.FormSubmissions.WithLabelValues(category, "invalid").Inc()
		return application.Application{}, &ValidationError{Fields: errs}
	}
	created, err := c.CreateApplication(ctx, f.Application())
	if err != nil {
		metrics.FormSubmissions.WithLabelValues(category, "failed").Inc()
		return application.Application{}, err
	}
	metrics.FormSubmissions.WithLabelValues(category, "submitted").Inc()
	return created, nil
}
