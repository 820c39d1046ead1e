// Package classify assigns storefront color tokens to category names and
// detects keyword-driven product traits (frozen, new).
//
// The policy is an explicit keyword table rather than inline regular
// expressions so it can be tested and extended independently of ingestion.
// Keywords cover both English and Arabic spellings and match as
// case-insensitive substrings.
package classify

import "strings"

// Token is the visual classification of a category.
type Token string

const (
	Frozen  Token = "frozen"
	Meat    Token = "meat"
	Dairy   Token = "dairy"
	Grocery Token = "grocery"
)

// Rule maps a keyword list to a token.
type Rule struct {
	Token    Token
	Keywords Keywords
}

// Table is an ordered list of rules; the first matching rule wins.
type Table struct {
	Rules   []Rule
	Default Token
}

// DefaultTable is the storefront's category vocabulary.
var DefaultTable = Table{
	Rules: []Rule{
		{Token: Frozen, Keywords: Keywords{"frozen", "مجمد", "مجمدات"}},
		{Token: Meat, Keywords: Keywords{"meat", "chicken", "beef", "لحوم", "دواجن"}},
		{Token: Dairy, Keywords: Keywords{"dairy", "milk", "البان", "حليب"}},
	},
	Default: Grocery,
}

var (
	// FrozenTags marks a product as frozen regardless of its category.
	FrozenTags = Keywords{"frozen", "مجمد"}
	// NewTags marks a product as new.
	NewTags = Keywords{"new", "جديد"}
)

// Classify returns the token of the first rule whose keywords occur in name.
func (t Table) Classify(name string) Token {
	for _, rule := range t.Rules {
		if rule.Keywords.Match(name) {
			return rule.Token
		}
	}
	if t.Default == "" {
		return Grocery
	}
	return t.Default
}

// Keywords is a set of substrings matched case-insensitively.
type Keywords []string

// Match reports whether any keyword occurs in s.
func (k Keywords) Match(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range k {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// MatchAny reports whether any keyword occurs in any of values.
func (k Keywords) MatchAny(values []string) bool {
	for _, v := range values {
		if k.Match(v) {
			return true
		}
	}
	return false
}

var icons = map[Token]string{
	Frozen:  "snowflake",
	Meat:    "meat",
	Grocery: "wheat",
	Dairy:   "milk",
}

// Icon returns the icon name shown next to categories of the given token.
func Icon(token Token) string {
	if icon, ok := icons[token]; ok {
		return icon
	}
	return "wheat"
}
