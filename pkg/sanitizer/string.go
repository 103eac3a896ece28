package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize collapses every run of whitespace into a single space.
func TrimAndNormalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripInvisible removes control and format runes (zero width spaces, BOMs)
// that survive copy and paste from spreadsheets. Whitespace is kept for
// TrimAndNormalize to collapse.
func StripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return r
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
}

var (
	namePipeline  = Pipeline{StripInvisible, TrimAndNormalize}
	labelPipeline = Pipeline{StripInvisible, TrimAndNormalize}
)

func NormalizeName(name string) string {
	return namePipeline.Apply(name)
}

// NormalizeNameForComparison is the key used to detect duplicate equipment names.
func NormalizeNameForComparison(name string) string {
	return strings.ToLower(NormalizeName(name))
}

func NormalizeLabel(label string) string {
	return labelPipeline.Apply(label)
}
