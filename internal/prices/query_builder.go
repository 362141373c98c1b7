package prices

import (
	"regexp"
	"strings"

	"github.com/guarzo/cardprice/internal/model"
)

var (
	// yearPattern matches "2021" as well as season years like "2021-22".
	yearPattern = regexp.MustCompile(`\d{4}(-\d{2})?`)

	// disallowedChars is everything a marketplace search term should not
	// carry. Whitespace is any Unicode whitespace, not just ASCII.
	disallowedChars = regexp.MustCompile(`[^a-zA-Z0-9\-\s\v\p{Z}\x{1c}-\x{1f}\x{85}]`)
)

// QueryBuilder creates sold-listing search queries from card fields
type QueryBuilder struct {
	year        string
	name        string
	number      string
	specialType string
}

// NewQueryBuilder creates a new query builder
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// WithSeries keeps only the year (or season) token of a series name.
// "2021-22 Upper Deck Series 2 Hockey" contributes "2021-22".
func (qb *QueryBuilder) WithSeries(series string) *QueryBuilder {
	qb.year = yearPattern.FindString(series)
	return qb
}

// WithName sets the player or character name
func (qb *QueryBuilder) WithName(name string) *QueryBuilder {
	qb.name = name
	return qb
}

// WithNumber sets the card number within its series
func (qb *QueryBuilder) WithNumber(number string) *QueryBuilder {
	qb.number = number
	return qb
}

// WithType adds the card type unless it is the plain base card
func (qb *QueryBuilder) WithType(cardType string) *QueryBuilder {
	if cardType != "" && cardType != model.DefaultCardType {
		qb.specialType = cardType
	} else {
		qb.specialType = ""
	}
	return qb
}

// Build creates the final query string. Parts are joined and trimmed
// before disallowed characters are stripped, and the result is not trimmed
// again: "Cole ?" builds "Cole ". It is empty only when no field was set.
func (qb *QueryBuilder) Build() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{qb.year, qb.name, qb.number, qb.specialType} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	query := strings.TrimSpace(strings.Join(parts, " "))
	return disallowedChars.ReplaceAllString(query, "")
}

// NormalizeQuery builds the marketplace search term for a card. Equal
// fields always produce the same query, which makes it usable as a cache key.
func NormalizeQuery(fields model.CardFields) string {
	fields = fields.WithDefaults()

	return NewQueryBuilder().
		WithSeries(fields.Series).
		WithName(fields.Name).
		WithNumber(fields.Number).
		WithType(fields.Type).
		Build()
}
