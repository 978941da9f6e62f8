package parser

import (
	"timesheet/internal/model"
)

// DefaultScanLimit 表头扫描行数
const DefaultScanLimit = 10

// HeaderLocator 表头行定位器
type HeaderLocator struct {
	scanLimit        int
	keywords         []string
	metadataPrefixes []string
}

// NewHeaderLocator 创建定位器，scanLimit <= 0 时使用默认值
func NewHeaderLocator(vocab Vocabulary, scanLimit int, metadataPrefixes []string) *HeaderLocator {
	if scanLimit <= 0 {
		scanLimit = DefaultScanLimit
	}
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &HeaderLocator{
		scanLimit:        scanLimit,
		keywords:         vocab.HeaderKeywords(),
		metadataPrefixes: metadataPrefixes,
	}
}

// Locate 在前 scanLimit 行中定位表头
// 取第一个命中词表且其后确有数据行的行；都无法确认时退回第一个命中行
func (l *HeaderLocator) Locate(sheet model.RawSheet) (model.HeaderCandidate, bool) {
	limit := min(l.scanLimit, sheet.RowCount())

	first := -1
	var firstHits []string
	for row := 0; row < limit; row++ {
		hits, ok := l.qualifies(sheet.Row(row))
		if !ok {
			continue
		}
		if first < 0 {
			first, firstHits = row, hits
		}
		if l.verified(sheet, row, len(hits)) {
			return model.HeaderCandidate{Row: row, Keywords: hits}, true
		}
	}
	if first < 0 {
		return model.HeaderCandidate{}, false
	}
	return model.HeaderCandidate{Row: first, Keywords: firstHits}, true
}

// qualifies 行内任一单元格命中词表，且该行本身不是数据行
func (l *HeaderLocator) qualifies(cells []string) ([]string, bool) {
	if isDataRow(cells) {
		return nil, false
	}
	var hits []string
	for _, cell := range cells {
		for _, kw := range ContainsAny(cell, l.keywords) {
			hits = appendUnique(hits, kw)
		}
	}
	return hits, len(hits) > 0
}

// verified 候选行之后的首个内容行不是更像表头的行，且后续存在数据行
func (l *HeaderLocator) verified(sheet model.RawSheet, row, hitCount int) bool {
	next := l.nextContentRow(sheet, row+1)
	if next < 0 {
		return false
	}
	if hits, ok := l.qualifies(sheet.Row(next)); ok && len(hits) >= hitCount {
		// 前置说明行，真正的表头在下方
		return false
	}
	for r := next; r < sheet.RowCount(); r++ {
		if isDataRow(sheet.Row(r)) {
			return true
		}
	}
	return false
}

// nextContentRow 跳过空行、元数据行以及不含时间的日期标签行
func (l *HeaderLocator) nextContentRow(sheet model.RawSheet, from int) int {
	for r := from; r < sheet.RowCount(); r++ {
		cells := sheet.Row(r)
		if model.IsBlank(cells) {
			continue
		}
		first := model.FirstContent(cells)
		if HasPrefixFold(first, l.metadataPrefixes) {
			continue
		}
		if IsDayLabel(first) && !isDataRow(cells) {
			continue
		}
		return r
	}
	return -1
}

// isDataRow 行内存在可解析为时间的单元格
func isDataRow(cells []string) bool {
	for _, c := range cells {
		if IsTimestamp(c) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
