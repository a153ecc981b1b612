package btime

import (
	"fmt"
	"strconv"
	"time"
	"unicode"
)

var (
	UTCLocale, _ = time.LoadLocation("UTC")
	// FnNow 用于测试时替换当前时间
	FnNow = time.Now
)

/*
UTCStamp
获取13位毫秒时间戳
*/
func UTCStamp() int64 {
	return FnNow().UnixMilli()
}

func MSToTime(timeMSecs int64) *time.Time {
	seconds := timeMSecs / 1000
	nanos := (timeMSecs % 1000) * 1000000
	res := time.Unix(seconds, nanos).UTC()
	return &res
}

/*
ParseTimeMS
将时间字符串转为13位毫秒时间戳
支持的形式：
2006
200601
20060102
10位时间戳
13位时间戳
2006-01-02 15:04
2006-01-02 15:04:05
*/
func ParseTimeMS(timeStr string) (int64, error) {
	textLen := len(timeStr)
	digitNum := CountDigit(timeStr)
	if textLen == 4 && digitNum == 4 {
		return dateToMS("2006", timeStr)
	} else if textLen == 6 && digitNum == 6 {
		return dateToMS("200601", timeStr)
	} else if textLen == 8 && digitNum == 8 {
		return dateToMS("20060102", timeStr)
	} else if textLen == 10 && digitNum == 10 {
		// 10位时间戳
		secs, err := strconv.ParseInt(timeStr, 10, 64)
		if err != nil {
			return 0, err
		}
		return secs * int64(1000), nil
	} else if textLen == 13 && digitNum == 13 {
		return strconv.ParseInt(timeStr, 10, 64)
	} else if textLen == 16 && digitNum == 12 {
		return dateToMS("2006-01-02 15:04", timeStr)
	} else if textLen == 19 && digitNum == 14 {
		return dateToMS("2006-01-02 15:04:05", timeStr)
	}
	return 0, fmt.Errorf("unSupport date fmt: %s", timeStr)
}

func dateToMS(layout, timeStr string) (int64, error) {
	t, err := time.ParseInLocation(layout, timeStr, UTCLocale)
	if err != nil {
		return 0, fmt.Errorf("parse %s fail: %s", layout, timeStr)
	}
	return t.UnixMilli(), nil
}

/*
ToDateStr
将时间戳转为UTC时间字符串
*/
func ToDateStr(timestamp int64, format string) string {
	var t time.Time
	if timestamp > 1000000000000 || timestamp < -1000000000000 {
		// 13位毫秒时间戳
		t = *MSToTime(timestamp)
	} else {
		// 10位秒级时间戳
		t = time.Unix(timestamp, 0).UTC()
	}
	if format == "" {
		format = "2006-01-02 15:04:05"
	}
	return t.Format(format)
}

func CountDigit(text string) int {
	count := 0
	for _, c := range text {
		if unicode.IsDigit(c) {
			count += 1
		}
	}
	return count
}
