package lawxml

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kanji numeral normalization. Law text spells every number out in kanji
// (第百二十三条, 金一万五千円, 七百五十ミリメートル); for Markdown output we
// can optionally rewrite references, amounts, dates and measurements using
// arabic numerals. Replacement passes run in a fixed order so that longer,
// more specific patterns (currency, units) win over bare references.

var kanjiDigits = map[rune]int64{
	'〇': 0, '一': 1, '二': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var unitSmall = map[rune]int64{'十': 10, '百': 100, '千': 1000}

var unitLarge = map[rune]int64{'万': 10000, '億': 100000000, '兆': 1000000000000}

var unitPrefixes = []struct{ kana, sym string }{
	{"ギガ", "G"}, {"メガ", "M"}, {"キロ", "k"}, {"センチ", "c"}, {"ミリ", "m"},
}

var unitModifiers = []struct{ kana, sym string }{
	{"平方", "²"}, {"立方", "³"},
}

var unitBases = map[string]string{
	// physical units
	"メートル":     "m",
	"メートル毎時":   "m/h",
	"メートル毎分":   "m/min",
	"メートル毎秒":   "m/s",
	"メートル毎秒毎秒": "m/s²",
	"グラム":      "g",
	"トン":       "t",
	"リットル":     "L",
	"ニュートン":    "N",
	"ジュール":     "J",
	"ワット":      "W",
	"パーセント":    "%",
	"パスカル":     "Pa",
	"ルクス":      "lx",
	"グレイ":      "Gy",
	"デシベル":     "dB",
	"オーム":      "Ω",
	"ヘクタール":    "ha",
	// counters kept as is
	"倍": "倍", "枚": "枚", "回": "回",
	"個": "個", "点": "点", "冊": "冊",
}

// ParseKanjiNumber converts a kanji numeral string to its numeric value.
// Both positional (二〇二三) and unit-based (千二百三十四, 一万五千) notations
// are supported, as well as the ・ decimal point. Returns false when the
// string is not a well formed numeral.
func ParseKanjiNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	if isASCIINumber(s) {
		v, err := strconv.ParseFloat(s, 64)
		return v, err == nil
	}

	if strings.Contains(s, "・") {
		parts := strings.Split(s, "・")
		if len(parts) != 2 {
			return 0, false
		}
		intPart, ok := ParseKanjiNumber(parts[0])
		if !ok {
			return 0, false
		}
		var frac strings.Builder
		for _, r := range parts[1] {
			d, ok := kanjiDigits[r]
			if !ok {
				return 0, false
			}
			frac.WriteByte(byte('0' + d))
		}
		if frac.Len() == 0 {
			return 0, false
		}
		v, err := strconv.ParseFloat(strconv.FormatInt(int64(intPart), 10)+"."+frac.String(), 64)
		return v, err == nil
	}

	// positional notation: contains 〇, or two and more digits without any
	// place-value units
	if strings.ContainsRune(s, '〇') || (!strings.ContainsAny(s, "十百千万億兆") && len([]rune(s)) > 1) {
		var digits strings.Builder
		for _, r := range s {
			d, ok := kanjiDigits[r]
			if !ok {
				return 0, false
			}
			digits.WriteByte(byte('0' + d))
		}
		v, err := strconv.ParseInt(digits.String(), 10, 64)
		return float64(v), err == nil
	}

	// unit-based notation
	var total, section, current int64
	for _, r := range s {
		if d, ok := kanjiDigits[r]; ok {
			current = d
		} else if u, ok := unitSmall[r]; ok {
			if current == 0 {
				current = 1
			}
			section += current * u
			current = 0
		} else if u, ok := unitLarge[r]; ok {
			if current > 0 {
				section += current
			}
			if section == 0 && current == 0 {
				section = 1
			}
			total += section * u
			section = 0
			current = 0
		} else {
			return 0, false
		}
	}
	total += section + current
	return float64(total), true
}

func isASCIINumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// convertUnitSymbol rewrites a kana unit name into its symbol, applying
// 平方/立方 modifiers and SI prefixes. Unknown units are returned unchanged.
func convertUnitSymbol(unit string) string {
	current := unit
	var prefix, suffix string

	for _, m := range unitModifiers {
		if rest, found := strings.CutPrefix(current, m.kana); found {
			suffix = m.sym
			current = rest
			break
		}
	}
	for _, p := range unitPrefixes {
		if rest, found := strings.CutPrefix(current, p.kana); found {
			prefix = p.sym
			current = rest
			break
		}
	}
	if base, ok := unitBases[current]; ok {
		return prefix + base + suffix
	}
	return unit
}

// formatNumber renders a parsed value without a trailing ".0" for integers.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatCurrency renders amounts grouped by the Japanese 万/億/兆 units,
// e.g. 123450000 -> "1億2345万".
func formatCurrency(v float64) string {
	if v == 0 {
		return "0"
	}
	if v != float64(int64(v)) {
		return formatNumber(v)
	}

	units := []string{"", "万", "億", "兆"}
	n := int64(v)
	var parts []string
	for i := 0; n > 0 && i < len(units); i++ {
		chunk := n % 10000
		if chunk > 0 {
			parts = append([]string{strconv.FormatInt(chunk, 10) + units[i]}, parts...)
		}
		n /= 10000
	}
	return strings.Join(parts, "")
}

const (
	kanjiNumClass = `[〇一二三四五六七八九十百千万億兆・]+`
	smallNumClass = `[〇一二三四五六七八九十百千]+`
)

var (
	reCurrency    = regexp.MustCompile(`(金)?(` + kanjiNumClass + `)(円|銭)`)
	rePhysical    = regexp.MustCompile(`(` + kanjiNumClass + `)((?:平方|立方)?(?:ギガ|メガ|キロ|センチ|ミリ)?(?:` + unitAlternation() + `))`)
	reLawRef      = regexp.MustCompile(`(第|同)(` + kanjiNumClass + `)(条|項|号|編|章|節|款|目)`)
	reDate        = regexp.MustCompile(`(明治|大正|昭和|平成|令和)(` + smallNumClass + `)(年度|年|月|日)`)
	reCount       = regexp.MustCompile(`(` + smallNumClass + `)(箇|か|カ|ヵ)(月|所|国)`)
	reBranchChain = regexp.MustCompile(`([条項号編章節款目])((?:の` + smallNumClass + `)+)`)
	reTableStyle  = regexp.MustCompile(`(別表|別記様式|様式)(第)?(` + kanjiNumClass + `)((?:[のノ]` + smallNumClass + `)*)`)
	reChainInner  = regexp.MustCompile(`[のノ](` + smallNumClass + `)`)
)

// unitAlternation builds the unit-name alternation, longest first so
// compound names (メートル毎秒毎秒) win over their prefixes (メートル).
func unitAlternation() string {
	names := make([]string, 0, len(unitBases))
	for name := range unitBases {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	for i, name := range names {
		names[i] = regexp.QuoteMeta(name)
	}
	return strings.Join(names, "|")
}

func convertChain(chain string) string {
	return reChainInner.ReplaceAllStringFunc(chain, func(m string) string {
		sub := reChainInner.FindStringSubmatch(m)
		if v, ok := ParseKanjiNumber(sub[1]); ok {
			return "の" + formatNumber(v)
		}
		return m
	})
}

// NormalizeNumerals rewrites kanji numerals in running text to arabic
// numerals: currency amounts, measurements with units, article and item
// references, appendix references, era dates, counted periods and branch
// number chains, in that order.
func NormalizeNumerals(text string) string {
	if text == "" {
		return text
	}

	out := reCurrency.ReplaceAllStringFunc(text, func(m string) string {
		sub := reCurrency.FindStringSubmatch(m)
		if v, ok := ParseKanjiNumber(sub[2]); ok {
			return sub[1] + formatCurrency(v) + sub[3]
		}
		return m
	})

	out = rePhysical.ReplaceAllStringFunc(out, func(m string) string {
		sub := rePhysical.FindStringSubmatch(m)
		if v, ok := ParseKanjiNumber(sub[1]); ok {
			return formatNumber(v) + convertUnitSymbol(sub[2])
		}
		return m
	})

	out = reLawRef.ReplaceAllStringFunc(out, func(m string) string {
		sub := reLawRef.FindStringSubmatch(m)
		if v, ok := ParseKanjiNumber(sub[2]); ok {
			return sub[1] + formatNumber(v) + sub[3]
		}
		return m
	})

	out = reTableStyle.ReplaceAllStringFunc(out, func(m string) string {
		sub := reTableStyle.FindStringSubmatch(m)
		v, ok := ParseKanjiNumber(sub[3])
		if !ok {
			return m
		}
		return sub[1] + sub[2] + formatNumber(v) + convertChain(sub[4])
	})

	out = reDate.ReplaceAllStringFunc(out, func(m string) string {
		sub := reDate.FindStringSubmatch(m)
		if v, ok := ParseKanjiNumber(sub[2]); ok {
			return sub[1] + formatNumber(v) + sub[3]
		}
		return m
	})

	out = reCount.ReplaceAllStringFunc(out, func(m string) string {
		sub := reCount.FindStringSubmatch(m)
		if v, ok := ParseKanjiNumber(sub[1]); ok {
			return formatNumber(v) + "か" + sub[3]
		}
		return m
	})

	out = reBranchChain.ReplaceAllStringFunc(out, func(m string) string {
		sub := reBranchChain.FindStringSubmatch(m)
		return sub[1] + convertChain(sub[2])
	})

	return out
}
