package dedup

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Normalize folds full-width characters, lowercases, and drops whitespace,
// punctuation and symbols.
func Normalize(name string) string {
	folded := width.Fold.String(name)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// DefaultSuffixes are sub-unit qualifiers removed when computing a base name.
// Entries are in normalized form.
var DefaultSuffixes = []string{
	// buildings and wings
	"住院部", "门诊部", "急诊部", "急诊科", "急诊", "住院楼", "门诊楼", "医技楼", "综合楼", "行政楼",
	"教学楼", "实验楼", "宿舍楼", "图书馆", "体育馆", "楼", "栋", "幢", "座",
	// departments
	"分部", "学院", "研究院", "研究所", "实验室", "培训中心", "中心", "部", "科", "馆",
	// in-venue spaces
	"大堂", "大厅", "前台", "服务台", "接待处", "停车场", "地下停车场", "食堂", "餐厅",
	// english
	"building", "bldg", "department", "dept", "hall", "center", "centre", "lobby",
	"frontdesk", "reception", "wing", "branchoffice", "parkinglot", "library", "annex",
}

// DefaultQualifiers are hard disambiguators: names that differ in these are
// distinct entities. Entries are in normalized form.
var DefaultQualifiers = []string{
	"校区", "园区", "分校", "分院", "院区", "基地", "校门", "园",
	"门店", "分店", "店",
	"社区", "小区", "村", "街道",
	"campus", "zone", "store", "branch", "community",
}

// numbered building designators such as "3号楼", "a座", "二栋".
var buildingNumber = regexp.MustCompile(`[0-9a-z一二三四五六七八九十]+(号楼|栋|幢|座|楼|层)$`)

// minBaseRunes keeps stripping from reducing a name to a single character.
const minBaseRunes = 2

// baseName strips sub-unit suffixes from a normalized name, repeatedly and
// longest first.
func baseName(n string, suffixes []string) string {
	for {
		stripped := false
		if loc := buildingNumber.FindStringIndex(n); loc != nil && utf8.RuneCountInString(n[:loc[0]]) >= minBaseRunes {
			n = n[:loc[0]]
			stripped = true
		}
		for _, s := range suffixes {
			if !strings.HasSuffix(n, s) || n == s {
				continue
			}
			rest := strings.TrimSuffix(n, s)
			if utf8.RuneCountInString(rest) < minBaseRunes {
				continue
			}
			n = rest
			stripped = true
			break
		}
		if !stripped {
			return n
		}
	}
}

// qualifierKey lists the disambiguating tokens present in a normalized name,
// in order of appearance. Tokens are matched longest first across both lists,
// so a qualifier inside a longer sub-unit suffix ("branch" in "branchoffice")
// does not count; a tie goes to the qualifier.
func qualifierKey(n string, qualifiers, suffixes []string) string {
	var found []string
	for i := 0; i < len(n); {
		q := longestPrefix(n[i:], qualifiers)
		if s := longestPrefix(n[i:], suffixes); len(s) > len(q) {
			i += len(s)
			continue
		}
		if q != "" {
			found = append(found, q)
			i += len(q)
			continue
		}
		_, size := utf8.DecodeRuneInString(n[i:])
		i += size
	}
	return strings.Join(found, "|")
}

func longestPrefix(s string, tokens []string) string {
	matched := ""
	for _, t := range tokens {
		if len(t) > len(matched) && strings.HasPrefix(s, t) {
			matched = t
		}
	}
	return matched
}

// sortByLength orders suffixes longest first so compound qualifiers are
// removed before their parts.
func sortByLength(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
	})
	return out
}
