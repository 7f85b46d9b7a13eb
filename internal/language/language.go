// Package language holds the fixed set of track languages submerge can tag
// and normalizes user input into their three-letter ISO 639-2 codes.
package language

import (
	"strings"

	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"
)

// Default is the track language used until the user picks another one.
const Default = "eng"

// Tag is one supported language: its ISO 639-2 code and display label.
type Tag struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type entry struct {
	code3 string   // ISO 639-2/T, the stored form
	alt3  string   // ISO 639-2/B alternate (e.g. "fre" vs "fra")
	code2 string   // ISO 639-1
	label string   // Human-readable name
	words []string // Full word forms, including endonyms
}

var languages = []entry{
	{"eng", "", "en", "English", []string{"english"}},
	{"fra", "fre", "fr", "French", []string{"french", "français", "francais"}},
	{"spa", "", "es", "Spanish", []string{"spanish", "español", "espanol"}},
	{"deu", "ger", "de", "German", []string{"german", "deutsch"}},
	{"ita", "", "it", "Italian", []string{"italian", "italiano"}},
	{"por", "", "pt", "Portuguese", []string{"portuguese", "português", "portugues"}},
	{"nld", "dut", "nl", "Dutch", []string{"dutch", "nederlands"}},
	{"jpn", "", "ja", "Japanese", []string{"japanese"}},
	{"kor", "", "ko", "Korean", []string{"korean"}},
	{"zho", "chi", "zh", "Chinese", []string{"chinese"}},
	{"rus", "", "ru", "Russian", []string{"russian"}},
	{"ara", "", "ar", "Arabic", []string{"arabic"}},
	{"hin", "", "hi", "Hindi", []string{"hindi"}},
	{"pol", "", "pl", "Polish", []string{"polish", "polski"}},
	{"swe", "", "sv", "Swedish", []string{"swedish", "svenska"}},
	{"dan", "", "da", "Danish", []string{"danish", "dansk"}},
	{"nor", "", "no", "Norwegian", []string{"norwegian", "norsk"}},
	{"fin", "", "fi", "Finnish", []string{"finnish", "suomi"}},
}

var (
	byCode3 map[string]*entry
	byAlias map[string]*entry
)

func init() {
	byCode3 = make(map[string]*entry, len(languages))
	byAlias = make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		byCode3[e.code3] = e
		byAlias[e.code3] = e
		byAlias[e.code2] = e
		if e.alt3 != "" {
			byAlias[e.alt3] = e
		}
		for _, w := range e.words {
			byAlias[foldKey(w)] = e
		}
	}
}

// foldKey builds a fresh Caser per call; Casers are stateful and must not be
// shared between goroutines.
func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Supported returns the supported languages in display order.
func Supported() []Tag {
	out := make([]Tag, 0, len(languages))
	for _, e := range languages {
		out = append(out, Tag{Code: e.code3, Label: e.label})
	}
	return out
}

// IsSupported reports whether code is exactly one of the stored three-letter codes.
func IsSupported(code string) bool {
	_, ok := byCode3[code]
	return ok
}

// Normalize maps a code, alternate code, language word, or BCP 47 tag
// (e.g. "pt-BR") onto a supported three-letter code.
func Normalize(input string) (string, bool) {
	key := foldKey(input)
	if key == "" {
		return "", false
	}
	if e, ok := byAlias[key]; ok {
		return e.code3, true
	}
	tag, err := xlanguage.Parse(key)
	if err != nil {
		return "", false
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return "", false
	}
	if e, ok := byCode3[base.ISO3()]; ok {
		return e.code3, true
	}
	return "", false
}

// Label returns the display label for a stored code, or the uppercased code
// when it is not supported.
func Label(code string) string {
	if e, ok := byCode3[code]; ok {
		return e.label
	}
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup returns the Tag for a stored code.
func Lookup(code string) (Tag, bool) {
	e, ok := byCode3[code]
	if !ok {
		return Tag{}, false
	}
	return Tag{Code: e.code3, Label: e.label}, true
}
