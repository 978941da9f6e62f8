package parser

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// clockBase 仅含时刻的值所落在的日期，与 time.Parse 对 "15:04" 的结果一致
var clockBase = time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC)

// clockLayouts 仅含时刻的格式，日期部分为 0000-01-01
var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3:04:05 PM",
	"3:04:05PM",
	"3 PM",
	"3PM",
}

// dateTimeLayouts 完整日期时间格式，日在前的写法优先于月在前
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 3:04 PM",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006 3:04 PM",
	"2/1/2006",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2-1-2006",
	"2.1.2006 15:04",
	"2.1.2006",
	"2/1/06 15:04",
	"2/1/06",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
	"2 January 2006 15:04",
	"2 January 2006",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, 02 Jan 2006 15:04:05",
}

// ParseTimestamp 宽松解析单元格时间，无法解析返回 nil
// 支持 HH:MM、HH:MM:SS、12 小时制、ISO 日期时间、日在前日期以及 Excel 序列号
func ParseTimestamp(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.Join(strings.Fields(s), " ")
	upper := strings.ToUpper(s)
	upper = strings.ReplaceAll(upper, "A.M.", "AM")
	upper = strings.ReplaceAll(upper, "P.M.", "PM")

	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return &t
		}
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
		if t, err := time.Parse(layout, upper); err == nil {
			return &t
		}
	}
	return parseSerial(s)
}

// minSerialDate 小于该值的数字不视为 Excel 日期（1901-01-01）
const minSerialDate = 367

// parseSerial 解析数字单元格：小于 1 为一天中的时刻，0-24 的整数为整点，较大值为 Excel 日期时间
func parseSerial(s string) *time.Time {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	if v < 1 {
		secs := math.Round(v * 24 * 3600)
		t := clockBase.Add(time.Duration(secs) * time.Second)
		return &t
	}
	if v <= 24 && v == math.Trunc(v) {
		t := clockBase.Add(time.Duration(v) * time.Hour)
		return &t
	}
	if v < minSerialDate {
		return nil
	}
	t, err := excelize.ExcelDateToTime(v, false)
	if err != nil {
		return nil
	}
	t = t.Round(time.Second)
	return &t
}

// IsTimestamp 单元格能否解析为时间
func IsTimestamp(raw string) bool {
	return ParseTimestamp(raw) != nil
}

// ParseDurationHours 解析显式时长列：小数小时、H:MM 或 Go 时长写法（1h30m），仅返回正值
func ParseDurationHours(raw string) *float64 {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "hrs")
	s = strings.TrimSuffix(s, "hours")
	s = strings.TrimSpace(s)

	var hours float64
	switch {
	case strings.Contains(s, ":"):
		parts := strings.Split(s, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil
		}
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || m < 0 || m >= 60 {
			return nil
		}
		hours = float64(h) + float64(m)/60
		if len(parts) == 3 {
			sec, err := strconv.Atoi(parts[2])
			if err != nil || sec < 0 || sec >= 60 {
				return nil
			}
			hours += float64(sec) / 3600
		}
	case strings.ContainsAny(s, "hm"):
		d, err := time.ParseDuration(strings.ReplaceAll(s, " ", ""))
		if err != nil {
			return nil
		}
		hours = d.Hours()
	default:
		v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		hours = v
	}
	if hours <= 0 {
		return nil
	}
	return &hours
}
