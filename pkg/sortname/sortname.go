// Package sortname generates bibliographic sort names following library
// conventions.
package sortname

import (
	"strings"
)

// articles are moved to the end of a title (e.g. "The Hobbit" -> "Hobbit, The").
var articles = []string{"The", "A", "An"}

// generationalSuffixes are preserved since they distinguish different people.
var generationalSuffixes = map[string]bool{
	"Jr.": true, "Jr": true, "Sr.": true, "Sr": true,
	"Junior": true, "Senior": true,
	"II": true, "III": true, "IV": true,
}

// ForTitle generates a sort title from a display title by moving a leading
// article to the end.
func ForTitle(title string) string {
	title = strings.TrimSpace(title)
	for _, article := range articles {
		if strings.HasPrefix(title, article+" ") {
			rest := strings.TrimSpace(title[len(article):])
			if rest != "" {
				return rest + ", " + article
			}
		}
	}
	return title
}

// ForPerson generates a "Last, First Middle" sort name from a display name.
// Generational suffixes stay attached to the last name; name particles move
// to the end with the given names. Single-word names are returned unchanged.
func ForPerson(name string) string {
	words := strings.Fields(strings.TrimSpace(name))
	if len(words) <= 1 {
		return strings.Join(words, " ")
	}

	// Peel off a generational suffix so it follows the last name.
	suffix := ""
	last := words[len(words)-1]
	if generationalSuffixes[strings.TrimSuffix(last, ",")] && len(words) > 2 {
		suffix = strings.TrimSuffix(last, ",")
		words = words[:len(words)-1]
	}

	if len(words) == 1 {
		if suffix != "" {
			return words[0] + " " + suffix
		}
		return words[0]
	}

	// The surname is the last word; particles stay with the given names so
	// "Ludwig van Beethoven" sorts as "Beethoven, Ludwig van".
	surname := words[len(words)-1]
	given := strings.Join(words[:len(words)-1], " ")

	result := surname + ", " + given
	if suffix != "" {
		result += " " + suffix
	}
	return result
}
