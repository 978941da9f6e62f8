package model

import (
	"math"
	"time"
)

// DefaultBaselineHours 每个周期的基准工时
const DefaultBaselineHours = 8.0

// TimeRecord 归一化后的一条工时记录
type TimeRecord struct {
	Sheet         string     `json:"sheet" yaml:"sheet"`
	Row           int        `json:"row" yaml:"row"` // 源表 0 基行号
	Period        string     `json:"period" yaml:"period"`
	Task          string     `json:"task" yaml:"task"`
	Start         *time.Time `json:"start,omitempty" yaml:"start,omitempty"`
	End           *time.Time `json:"end,omitempty" yaml:"end,omitempty"`
	DurationHours *float64   `json:"durationHours,omitempty" yaml:"durationHours,omitempty"`
}

// Hours 有效时长，缺失按 0 计
func (r TimeRecord) Hours() float64 {
	if r.DurationHours == nil {
		return 0
	}
	return *r.DurationHours
}

// Usable 是否含有效时长
func (r TimeRecord) Usable() bool {
	return r.DurationHours != nil && *r.DurationHours > 0
}

// PeriodSummary 周期汇总
type PeriodSummary struct {
	Period     string  `json:"period" yaml:"period"`
	TotalHours float64 `json:"totalHours" yaml:"totalHours"`
	Entries    int     `json:"entries" yaml:"entries"`
}

// Classification 利用率分级
type Classification string

const (
	ClassificationLow     Classification = "low"
	ClassificationHealthy Classification = "healthy"
	ClassificationOver    Classification = "over"
)

// Classify 按利用率分级，边界 50 与 100 均属 healthy
func Classify(utilizationPct float64) Classification {
	switch {
	case utilizationPct < 50:
		return ClassificationLow
	case utilizationPct > 100:
		return ClassificationOver
	default:
		return ClassificationHealthy
	}
}

// Message 分级对应的建议提示
func (c Classification) Message() string {
	switch c {
	case ClassificationLow:
		return "Low utilization detected. Consider redistributing workload."
	case ClassificationOver:
		return "Over-utilization! Possible burnout."
	default:
		return "Utilization is within healthy range."
	}
}

// UtilizationReport 利用率报告
type UtilizationReport struct {
	TotalHours       float64        `json:"totalHours" yaml:"totalHours"`
	AveragePerPeriod float64        `json:"averagePerPeriod" yaml:"averagePerPeriod"`
	UtilizationPct   float64        `json:"utilizationPct" yaml:"utilizationPct"`
	BaselineHours    float64        `json:"baselineHours" yaml:"baselineHours"`
	Periods          int            `json:"periods" yaml:"periods"`
	Classification   Classification `json:"classification" yaml:"classification"`
}

// Round2 保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
