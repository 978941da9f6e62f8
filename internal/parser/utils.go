package parser

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var (
	// 日期标签行，如 "Monday 02 June" / "Tue, 3 Jun 2025"
	dayLabelPattern = regexp.MustCompile(`(?i)^(monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thurs|thu|friday|fri|saturday|sat|sunday|sun)\.?,?\s+\d{1,2}(st|nd|rd|th)?\s+[a-z]+`)
)

// fold 大小写折叠；Caser 有内部状态，不能跨 goroutine 共享
func fold(s string) string {
	return cases.Fold().String(s)
}

// NormalizeColumnName 规范化列名：大小写折叠、去首尾空白、去除非字母数字字符
// 仅用于匹配，不改变原始列名；重复调用结果不变
func NormalizeColumnName(name string) string {
	name = fold(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokenize 按非字母数字字符与驼峰边界切分并折叠大小写
// "StartTime" -> [start time]，"Check-In" -> [check in]
func Tokenize(name string) []string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, fold(string(cur)))
			cur = cur[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if i > 0 && len(cur) > 0 {
			prev := runes[i-1]
			lowerToUpper := unicode.IsLower(prev) && unicode.IsUpper(r)
			acronymEnd := unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			digitEdge := unicode.IsDigit(prev) != unicode.IsDigit(r)
			if lowerToUpper || acronymEnd || digitEdge {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return tokens
}

// shortKeywordLen 不超过该长度的关键词只按词匹配（in/out/end）
const shortKeywordLen = 3

// MatchKeyword 判断规范化文本是否命中关键词
// 长关键词按子串匹配；短关键词按词匹配，避免 "training" 命中 "in"
func MatchKeyword(normalized string, tokens []string, keyword string) bool {
	kw := NormalizeColumnName(keyword)
	if kw == "" {
		return false
	}
	if len([]rune(kw)) > shortKeywordLen {
		return strings.Contains(normalized, kw)
	}
	for _, tok := range tokens {
		if strings.HasPrefix(tok, kw) && isShortKeywordToken(tok, kw) {
			return true
		}
	}
	return false
}

// isShortKeywordToken 词与短关键词相等，或为 endtime / intime / outat / ends / ending 这类组合
func isShortKeywordToken(tok, kw string) bool {
	rest := strings.TrimPrefix(tok, kw)
	switch rest {
	case "", "time", "at", "s", "ing", "ed":
		return true
	}
	return false
}

// ContainsAny 检查文本是否命中任意关键词，返回命中的关键词
func ContainsAny(text string, keywords []string) []string {
	normalized := NormalizeColumnName(text)
	tokens := Tokenize(text)
	var hits []string
	for _, kw := range keywords {
		if MatchKeyword(normalized, tokens, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

// IsDayLabel 是否为日期标签行首单元格
func IsDayLabel(cell string) bool {
	return dayLabelPattern.MatchString(strings.TrimSpace(cell))
}

// HasPrefixFold 大小写不敏感的前缀判断
func HasPrefixFold(text string, prefixes []string) bool {
	text = fold(strings.TrimSpace(text))
	for _, p := range prefixes {
		p = fold(strings.TrimSpace(p))
		if p != "" && strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// CollapseSpace 压缩连续空白
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
