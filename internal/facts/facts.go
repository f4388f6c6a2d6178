// Package facts retrieves personalized facts about a birth date, either from a
// remote generator or from the local one, and degrades to a static fallback.
package facts

import (
	"github.com/Talos-git/cosmic-birthday/internal/engine"
)

// Category names one of the five fact groups. The set is closed.
type Category string

const (
	CategoryHistorical  Category = "historicalEvents"
	CategoryPopCulture  Category = "popCulture"
	CategoryTechnology  Category = "technologyMilestones"
	CategoryCelebrities Category = "celebrityBirthdays"
	CategoryComparisons Category = "funComparisons"
)

// Categories returns the categories in display order.
func Categories() []Category {
	return []Category{
		CategoryHistorical,
		CategoryPopCulture,
		CategoryTechnology,
		CategoryCelebrities,
		CategoryComparisons,
	}
}

// Facts groups generated sentences by category.
type Facts struct {
	HistoricalEvents     []string `json:"historicalEvents"`
	PopCulture           []string `json:"popCulture"`
	TechnologyMilestones []string `json:"technologyMilestones"`
	CelebrityBirthdays   []string `json:"celebrityBirthdays"`
	FunComparisons       []string `json:"funComparisons"`
}

// Normalize replaces missing categories with empty lists.
func (f Facts) Normalize() Facts {
	for _, c := range Categories() {
		if p := f.field(c); *p == nil {
			*p = []string{}
		}
	}
	return f
}

// Get returns the facts of one category.
func (f Facts) Get(c Category) []string {
	if p := f.field(c); p != nil {
		return *p
	}
	return nil
}

// Count returns the number of facts over all categories.
func (f Facts) Count() int {
	n := 0
	for _, c := range Categories() {
		n += len(f.Get(c))
	}
	return n
}

func (f *Facts) field(c Category) *[]string {
	switch c {
	case CategoryHistorical:
		return &f.HistoricalEvents
	case CategoryPopCulture:
		return &f.PopCulture
	case CategoryTechnology:
		return &f.TechnologyMilestones
	case CategoryCelebrities:
		return &f.CelebrityBirthdays
	case CategoryComparisons:
		return &f.FunComparisons
	}
	return nil
}

// Request is the generator's input. Country is a display name when known.
type Request struct {
	Birthdate  string `json:"birthdate"`
	CurrentAge int    `json:"currentAge"`
	Country    string `json:"country,omitempty"`
}

// Response is the generator's success payload.
type Response struct {
	Success   bool   `json:"success"`
	Facts     Facts  `json:"facts"`
	Birthdate string `json:"birthdate"`
	Age       int    `json:"age"`
	Country   string `json:"country,omitempty"`
}

// ErrorResponse is the generator's failure payload; Facts is a safe default when present.
type ErrorResponse struct {
	Error string `json:"error"`
	Facts *Facts `json:"facts,omitempty"`
}

// NewRequest builds the request for subject at the age held in stats.
func NewRequest(subject engine.Subject, stats engine.AgeStats) Request {
	req := Request{
		Birthdate:  subject.Birthdate(),
		CurrentAge: stats.Years,
	}
	if subject.Country != "" {
		req.Country = engine.CountryName(subject.Country)
	}
	return req
}

// Fallback returns the generic facts shown when nothing personalized is available.
func Fallback() Facts {
	return Facts{
		HistoricalEvents: []string{
			"You've witnessed the explosive rise of the internet from dial-up modems to lightning-fast 5G, fundamentally transforming how humanity communicates!",
			"Your lifetime has seen humanity land rovers on Mars, discover thousands of exoplanets, and capture the first-ever image of a black hole in 2019 - space exploration has absolutely exploded!",
		},
		PopCulture: []string{
			"You grew up watching the entertainment landscape transform from VHS tapes and Blockbuster nights to Netflix, streaming wars, and binge-watching entire seasons in a weekend!",
			"Your childhood era gave us some of the most iconic pop culture moments - from boy bands and Britney Spears to the Marvel Cinematic Universe dominating the box office!",
		},
		TechnologyMilestones: []string{
			"Smartphones didn't exist when you were young! The iPhone that changed everything didn't launch until 2007, and now you can't imagine life without it!",
			"You're older than Google, YouTube, Facebook, Twitter, Instagram, and TikTok - you literally watched the entire social media revolution unfold from the beginning!",
		},
		CelebrityBirthdays: []string{
			"You share your birthday with amazing people around the world who have made their mark on history!",
		},
		FunComparisons: []string{
			"You've lived through multiple generations of gaming - from PlayStation 1 to PS5, witnessing gaming evolve from blocky graphics to photorealistic virtual worlds!",
			"Every single day of your life is a new adventure, and you've collected thousands of memories, experiences, and moments that make your journey uniquely yours!",
		},
	}
}
