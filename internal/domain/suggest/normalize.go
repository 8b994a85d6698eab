package suggest

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var separatorPattern = regexp.MustCompile(`[\s\-_/\\]+`)

// cyrillicTranslit maps lowercase Cyrillic letters to their Latin
// transliteration. Hard and soft signs drop entirely.
var cyrillicTranslit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// Normalize folds a column header into a compact lowercase Latin form:
// separators removed, Cyrillic transliterated, diacritics stripped.
func Normalize(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))
	s = separatorPattern.ReplaceAllString(s, "")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if latin, ok := cyrillicTranslit[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}

	return stripDiacritics(b.String())
}

func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
