package nlu

import (
	"regexp"
	"strings"

	"github.com/mikey/luca-assistant/internal/core"
)

var (
	arithmeticRe = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*([+\-*/])\s*(-?\d+(?:\.\d+)?)`)
	countRe      = regexp.MustCompile(`\b(\d+)\b`)
)

// Spoken operator words in all three languages, replaced before the
// arithmetic regex runs.
var operatorWords = strings.NewReplacer(
	" plus ", " + ",
	" minus ", " - ",
	" times ", " * ",
	" multiplied by ", " * ",
	" divided by ", " / ",
	" over ", " / ",
	" زايد ", " + ",
	" زائد ", " + ",
	" ناقص ", " - ",
	" في ", " * ",
	" ضارب ", " * ",
	" على ", " / ",
	" تقسيم ", " / ",
)

// extractEntities runs the per-intent extractors against normalized text.
func (c *Classifier) extractEntities(name core.IntentName, text string) map[string]string {
	entities := map[string]string{}

	switch name {
	case core.IntentCalculate:
		padded := " " + text + " "
		if m := arithmeticRe.FindStringSubmatch(operatorWords.Replace(padded)); m != nil {
			entities[core.EntityOperand1] = m[1]
			entities[core.EntityOperator] = m[2]
			entities[core.EntityOperand2] = m[3]
		}
	case core.IntentGetWeather:
		if city := c.findCity(text); city != "" {
			entities[core.EntityCity] = city
		}
	case core.IntentFetchEmail:
		if m := countRe.FindStringSubmatch(text); m != nil {
			entities[core.EntityEmailCount] = m[1]
		}
	}
	return entities
}

// findCity scans the gazetteer for the longest alias contained in the text.
func (c *Classifier) findCity(text string) string {
	padded := " " + text + " "
	bestLen := 0
	best := ""
	for _, token := range strings.Fields(text) {
		if city := c.lex.CanonicalCity(token); city != "" && len(token) > bestLen {
			best = city
			bestLen = len(token)
		}
	}
	// Multi-word aliases ("new york") are not single tokens.
	for _, alias := range []string{"new york", "نيويورك"} {
		if strings.Contains(padded, " "+alias+" ") && len(alias) > bestLen {
			if city := c.lex.CanonicalCity(alias); city != "" {
				best = city
				bestLen = len(alias)
			}
		}
	}
	return best
}
