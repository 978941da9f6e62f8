package timesheet

import (
	"sort"
	"time"

	"timesheet/internal/model"
)

// computeDuration 起止均可解析且结束晚于开始时返回小时数
func computeDuration(start, end *time.Time) *float64 {
	if start == nil || end == nil || !end.After(*start) {
		return nil
	}
	hours := end.Sub(*start).Hours()
	return &hours
}

// Summarizer 周期汇总与利用率计算
type Summarizer struct {
	baseline float64
}

// NewSummarizer 创建汇总器，baselineHours <= 0 时使用 8 小时
func NewSummarizer(baselineHours float64) *Summarizer {
	if baselineHours <= 0 {
		baselineHours = model.DefaultBaselineHours
	}
	return &Summarizer{baseline: baselineHours}
}

// Summarize 按周期分组求和，再对周期合计取平均
// 各组时长排序后相加，周期按名称排序，结果与记录顺序无关
func (s *Summarizer) Summarize(records []model.TimeRecord) ([]model.PeriodSummary, model.UtilizationReport) {
	durations := make(map[string][]float64)
	entries := make(map[string]int)
	for _, rec := range records {
		entries[rec.Period]++
		if rec.Usable() {
			durations[rec.Period] = append(durations[rec.Period], *rec.DurationHours)
		}
	}

	periods := make([]model.PeriodSummary, 0, len(entries))
	for period, n := range entries {
		periods = append(periods, model.PeriodSummary{
			Period:     period,
			TotalHours: sortedSum(durations[period]),
			Entries:    n,
		})
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Period < periods[j].Period })

	return periods, s.Report(periods)
}

// Report 由周期汇总计算利用率报告
func (s *Summarizer) Report(periods []model.PeriodSummary) model.UtilizationReport {
	totals := make([]float64, len(periods))
	for i, p := range periods {
		totals[i] = p.TotalHours
	}
	total := sortedSum(totals)

	report := model.UtilizationReport{
		TotalHours:    total,
		BaselineHours: s.baseline,
		Periods:       len(periods),
	}
	if len(periods) > 0 {
		report.AveragePerPeriod = total / float64(len(periods))
	}
	report.UtilizationPct = model.Round2(report.AveragePerPeriod / s.baseline * 100)
	report.Classification = model.Classify(report.UtilizationPct)
	return report
}

// UsableCount 含有效时长的记录数
func UsableCount(records []model.TimeRecord) int {
	n := 0
	for _, rec := range records {
		if rec.Usable() {
			n++
		}
	}
	return n
}

func sortedSum(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	return sum
}
