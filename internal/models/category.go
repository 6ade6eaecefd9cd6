package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

// Category classifies an entry.
type Category string

const (
	CategoryGeneral   Category = "General"
	CategoryWork      Category = "Work"
	CategoryFinance   Category = "Finance"
	CategorySocial    Category = "Social"
	CategoryStreaming Category = "Streaming"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryGeneral,
	CategoryWork,
	CategoryFinance,
	CategorySocial,
	CategoryStreaming,
}

// ParseCategory matches s case-insensitively against Categories. An empty
// string yields CategoryGeneral.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryGeneral, nil
	}
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", common.ErrorValidation, s)
}

func (c Category) Valid() bool {
	for _, x := range Categories {
		if c == x {
			return true
		}
	}
	return false
}
