// Package timesheet 把定位好表头与列角色的工作表转换为工时记录并汇总
package timesheet

import (
	"timesheet/internal/model"
	"timesheet/internal/parser"
)

// Options 归一化参数
type Options struct {
	DefaultTask         string   // 任务列缺失或为空时的取值
	DefaultPeriod       string   // 工作表无名称时的周期
	MetadataPrefixes    []string // 以这些前缀开头的行视为元数据
	SectionLabelPeriods bool     // 无周期列时用日期标签行作为周期
	CarryForwardPeriods bool     // 周期单元格为空时沿用上方最近的周期；结果依赖行序
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		DefaultTask:      "N/A",
		DefaultPeriod:    "Unknown",
		MetadataPrefixes: []string{"reporting time"},
	}
}

// Normalizer 行归一化
type Normalizer struct {
	opts Options
}

// NewNormalizer 创建归一化器
func NewNormalizer(opts Options) *Normalizer {
	if opts.DefaultTask == "" {
		opts.DefaultTask = "N/A"
	}
	if opts.DefaultPeriod == "" {
		opts.DefaultPeriod = "Unknown"
	}
	return &Normalizer{opts: opts}
}

// Normalize 将表头以下的数据行转换为工时记录
// 跳过空行、元数据行、重复表头行以及起止与时长都为空的行（含日期标签行）
func (n *Normalizer) Normalize(sheet model.RawSheet, header model.HeaderCandidate, roles model.ColumnRoleMap) []model.TimeRecord {
	startCol, _ := roles.Column(model.RoleStart)
	endCol, _ := roles.Column(model.RoleEnd)
	taskCol, hasTask := roles.Column(model.RoleTask)
	periodCol, hasPeriod := roles.Column(model.RolePeriod)
	durationCol, hasDuration := roles.Column(model.RoleDuration)

	headerRow := sheet.Row(header.Row)
	fallbackPeriod := sheet.Name
	if parser.CollapseSpace(fallbackPeriod) == "" {
		fallbackPeriod = n.opts.DefaultPeriod
	}

	var records []model.TimeRecord
	lastPeriod := ""
	section := ""
	for r := header.Row + 1; r < sheet.RowCount(); r++ {
		cells := sheet.Row(r)
		if model.IsBlank(cells) {
			continue
		}
		first := model.FirstContent(cells)
		if parser.HasPrefixFold(first, n.opts.MetadataPrefixes) {
			continue
		}
		if isRepeatedHeader(cells, headerRow, startCol, endCol) {
			continue
		}

		startRaw := sheet.Cell(r, startCol)
		endRaw := sheet.Cell(r, endCol)
		durationRaw := ""
		if hasDuration {
			durationRaw = sheet.Cell(r, durationCol)
		}
		if parser.CollapseSpace(startRaw) == "" && parser.CollapseSpace(endRaw) == "" && parser.CollapseSpace(durationRaw) == "" {
			if parser.IsDayLabel(first) {
				section = parser.CollapseSpace(first)
			}
			continue
		}

		rec := model.TimeRecord{
			Sheet: sheet.Name,
			Row:   r,
			Task:  n.opts.DefaultTask,
			Start: parser.ParseTimestamp(startRaw),
			End:   parser.ParseTimestamp(endRaw),
		}
		if hasTask {
			if v := parser.CollapseSpace(sheet.Cell(r, taskCol)); v != "" {
				rec.Task = v
			}
		}

		switch {
		case hasPeriod:
			rec.Period = parser.CollapseSpace(sheet.Cell(r, periodCol))
			if rec.Period == "" && n.opts.CarryForwardPeriods {
				rec.Period = lastPeriod
			}
			if rec.Period != "" {
				lastPeriod = rec.Period
			}
		case n.opts.SectionLabelPeriods:
			rec.Period = section
		}
		if rec.Period == "" {
			rec.Period = fallbackPeriod
		}

		rec.DurationHours = computeDuration(rec.Start, rec.End)
		if rec.DurationHours == nil && hasDuration {
			rec.DurationHours = parser.ParseDurationHours(durationRaw)
		}
		records = append(records, rec)
	}
	return records
}

// isRepeatedHeader 起止列的文本与表头一致
func isRepeatedHeader(cells, header []string, startCol, endCol int) bool {
	return sameLabel(cells, header, startCol) && sameLabel(cells, header, endCol)
}

func sameLabel(cells, header []string, col int) bool {
	if col < 0 || col >= len(cells) || col >= len(header) {
		return false
	}
	a := parser.NormalizeColumnName(cells[col])
	return a != "" && a == parser.NormalizeColumnName(header[col])
}
