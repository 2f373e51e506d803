// Package teams canonicalises team abbreviations across data providers.
package teams

import (
	"sort"
	"strings"
)

// builtinAliases maps historical and provider-specific codes to the current
// three-letter abbreviation used by the box-score source.
var builtinAliases = map[string]string{
	"NJN":  "BKN",
	"BRK":  "BKN",
	"SEA":  "OKC",
	"NOH":  "NOP",
	"NOK":  "NOP",
	"NO":   "NOP",
	"VAN":  "MEM",
	"CHH":  "CHA",
	"CHO":  "CHA",
	"PHO":  "PHX",
	"GS":   "GSW",
	"NY":   "NYK",
	"SA":   "SAS",
	"UTAH": "UTA",
	"WSH":  "WAS",
}

// Canonicalizer maps aliases to canonical abbreviations. The zero value is
// not usable; construct with New.
type Canonicalizer struct {
	aliases map[string]string
}

// New returns a canonicalizer with the built-in table plus extra aliases.
// Extra aliases take precedence. Keys and values are matched case-insensitively.
func New(extra map[string]string) *Canonicalizer {
	aliases := make(map[string]string, len(builtinAliases)+len(extra))
	for k, v := range builtinAliases {
		aliases[k] = v
	}
	for k, v := range extra {
		aliases[normalize(k)] = normalize(v)
	}
	return &Canonicalizer{aliases: aliases}
}

// Canonical returns the canonical abbreviation of code.
func (c *Canonicalizer) Canonical(code string) string {
	n := normalize(code)
	if canonical, ok := c.aliases[n]; ok {
		return canonical
	}
	return n
}

// IsAlias reports whether code is rewritten by Canonical.
func (c *Canonicalizer) IsAlias(code string) bool {
	_, ok := c.aliases[normalize(code)]
	return ok
}

// Aliases returns the alias codes in sorted order.
func (c *Canonicalizer) Aliases() []string {
	out := make([]string, 0, len(c.aliases))
	for k := range c.aliases {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
