package engine

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// NormalizeCountry canonicalizes an ISO 3166 code ("my", "MYS", "458" -> "MY").
// An empty code is valid and means "no country".
func NormalizeCountry(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", nil
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return "", WrapError(err, CodeInvalidInput, config.ErrCountryInvalid)
	}
	if !region.IsCountry() {
		return "", NewError(CodeInvalidInput, config.ErrCountryInvalid)
	}
	return region.String(), nil
}

// CountryName returns the English name of a region code, or the input unchanged
// when it is not a known region. Names pass through, so the facts contract can
// carry either form.
func CountryName(code string) string {
	region, err := language.ParseRegion(strings.TrimSpace(code))
	if err != nil {
		return code
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return code
}
