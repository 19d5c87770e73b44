package format

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// BarWidth is the number of cells inside a progress bar.
const BarWidth = 20

var sizeUnits = []string{"B", "kB", "MB", "GB", "TB"}

// PrettyFileSize formats bytes using base 1024 units with two decimals.
//
//	PrettyFileSize(1024)    // "1.00 kB"
//	PrettyFileSize(1048576) // "1.00 MB"
func PrettyFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0.00 B"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	return fmt.Sprintf("%.2f %s", float64(bytes)/math.Pow(1024, float64(i)), sizeUnits[i])
}

// ProgressBar renders a fixed width bar for a fraction between 0 and 1.
// Values outside the range are clamped, NaN counts as zero.
//
//	ProgressBar(0.5) // "[==========>         ] 50%"
func ProgressBar(progress float64) string {
	if math.IsNaN(progress) || progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	filled := int(math.Floor(progress * BarWidth))
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(strings.Repeat("=", filled))
	if filled < BarWidth {
		b.WriteByte('>')
		b.WriteString(strings.Repeat(" ", BarWidth-filled-1))
	}
	fmt.Fprintf(&b, "] %d%%", int(math.Round(progress*100)))
	return b.String()
}

// Fraction returns done/total, or 0 when total is not positive.
func Fraction(done, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total)
}

// ProgressLine renders the status line logged while transferring files:
//
//	[<bar>] <pct>% of <total> - <action> <i>/<n> "<path>" <size>
func ProgressLine(done, total int64, action string, index, count int, path string, size int64) string {
	return fmt.Sprintf("%s of %s - %s %d/%d %q %s",
		ProgressBar(Fraction(done, total)), PrettyFileSize(total),
		action, index, count, path, PrettyFileSize(size))
}

// TitleCase converts snake_case to Title Case. Every run of underscores
// becomes a single space and the following character is upper-cased, so a
// leading underscore yields a leading space. Trailing underscores are kept.
//
//	TitleCase("hello_world") // "Hello World"
//	TitleCase("_leading")    // " Leading"
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	upperNext := true
	for i := 0; i < len(s); {
		if s[i] == '_' {
			j := i
			for j < len(s) && s[j] == '_' {
				j++
			}
			if j == len(s) {
				b.WriteString(s[i:])
				break
			}
			b.WriteByte(' ')
			upperNext = true
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		b.WriteRune(r)
		i += size
	}
	return b.String()
}
