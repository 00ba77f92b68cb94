package nlu

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper removes combining marks, which covers Arabic harakat as
// well as Latin accents.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var arabicLetterFolds = strings.NewReplacer(
	"أ", "ا",
	"إ", "ا",
	"آ", "ا",
	"ٱ", "ا",
	"ى", "ي",
	"ؤ", "و",
	"ئ", "ي",
)

var arabicDigits = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

// Normalize prepares an utterance (or a lexicon phrase) for matching:
// lowercase, diacritics stripped, hamza variants folded, Arabic-Indic digits
// converted, arabizi chat digits folded inside Latin words, whitespace
// collapsed.
func Normalize(text string) string {
	s := strings.ToLower(text)
	if out, _, err := transform.String(diacriticStripper, s); err == nil {
		s = out
	}
	s = arabicLetterFolds.Replace(s)
	s = arabicDigits.Replace(s)

	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = foldArabizi(f)
	}
	return strings.Join(fields, " ")
}

// foldArabizi rewrites the digit substitutions of the Tunisian chat alphabet
// (3=ain, 7=ha, 9=qaf, 5=kha, 2=hamza) into their usual Latin
// transliterations, but only inside tokens that also carry Latin letters so
// arithmetic like "3+4" stays intact.
func foldArabizi(token string) string {
	hasLatin := false
	for _, r := range token {
		if r >= 'a' && r <= 'z' {
			hasLatin = true
			break
		}
	}
	if !hasLatin {
		return token
	}
	var b strings.Builder
	for _, r := range token {
		switch r {
		case '2', '3':
			b.WriteByte('a')
		case '5':
			b.WriteString("kh")
		case '7':
			b.WriteByte('h')
		case '9':
			b.WriteByte('k')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
