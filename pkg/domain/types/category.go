package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Category classifies the kind of work a log records. It is optional on a log.
type Category string

const (
	CategoryInspection   Category = "inspection"
	CategoryInstallation Category = "installation"
	CategoryMaintenance  Category = "maintenance"
	CategorySafety       Category = "safety"
	CategoryElectrical   Category = "electrical"
	CategoryPlumbing     Category = "plumbing"
	CategoryHVAC         Category = "hvac"
	CategoryStructural   Category = "structural"
	CategoryRoofing      Category = "roofing"
	CategorySecurity     Category = "security"
)

// AllCategories returns the selectable categories
func AllCategories() []Category {
	return []Category{
		CategoryInspection,
		CategoryInstallation,
		CategoryMaintenance,
		CategorySafety,
		CategoryElectrical,
		CategoryPlumbing,
		CategoryHVAC,
		CategoryStructural,
		CategoryRoofing,
		CategorySecurity,
	}
}

func (c Category) IsValid() bool {
	for _, v := range AllCategories() {
		if c == v {
			return true
		}
	}
	return false
}

// Label capitalizes the first letter, so "hvac" renders as "Hvac".
func (c Category) Label() string {
	if c == "" {
		return ""
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory parses a string into a Category. An empty string means no category.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return "", nil
	}
	c := Category(s)
	if !c.IsValid() {
		return "", goerr.Wrap(ErrInvalidValue, "invalid category", goerr.V("category", s))
	}
	return c, nil
}
