package logger

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func stringReplaceArray(instr string, what []string, with string) string {
	for _, line := range what {
		instr = strings.Replace(instr, line, with, -1)
	}
	return instr
}

// StringToSlug builds html ids and css classes out of labels.
// no chinese or cyrilic supported
func StringToSlug(instr string) string {
	instr = strings.ToLower(instr)
	instr = strings.Replace(instr, "ä", "ae", -1)
	instr = strings.Replace(instr, "ö", "oe", -1)
	instr = strings.Replace(instr, "ü", "ue", -1)
	instr = strings.Replace(instr, "ß", "ss", -1)
	instr = strings.Replace(instr, "&", "and", -1)
	instr = strings.Replace(instr, "@", "at", -1)
	instr = strings.Replace(instr, "'", "", -1)
	instr = stringReplaceArray(instr, []string{" ", "§", "$", "%", "/", "(", ")", "=", "!", "?", "`", "\\", "}", "]", "[", "{", "|", ",", ".", ";", ":", "-", "+", "#", "<", ">", "*"}, "_")
	for strings.Contains(instr, "__") {
		instr = strings.Replace(instr, "__", "_", -1)
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, instr)
	return strings.Trim(result, "_")
}

// CleanFormValue trims a submitted form value and brings it into NFC so
// composed and decomposed input compare equal on the backend.
func CleanFormValue(instr string) string {
	return norm.NFC.String(strings.TrimSpace(instr))
}
