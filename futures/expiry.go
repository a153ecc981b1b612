package futures

import (
	"strconv"
	"strings"
	"time"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banseed/core"
)

// 到期日与标签月份最多相差的月数，超出认为是错误数据
const maxExpiryOffsetMonths = 12

/*
ExpiryDate
合约最后交易日，只精确到天，UTC零点
*/
type ExpiryDate struct {
	t time.Time
}

func NewExpiry(year int, month time.Month, day int) ExpiryDate {
	return ExpiryDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

/*
ParseExpiry
解析YYYYMMDD格式的日期，用于截止日期等
*/
func ParseExpiry(text string) (ExpiryDate, *errs.Error) {
	text = strings.TrimSpace(text)
	if len(text) != 8 || !isDigits(text) {
		return ExpiryDate{}, errs.NewMsg(core.ErrInvalidLabel, "expiry must be YYYYMMDD: %q", text)
	}
	t, err_ := time.ParseInLocation(core.DateFmt, text, time.UTC)
	if err_ != nil {
		return ExpiryDate{}, errs.NewFull(core.ErrInvalidLabel, err_, "invalid expiry: %q", text)
	}
	return ExpiryDate{t: t}, nil
}

func (e ExpiryDate) IsZero() bool {
	return e.t.IsZero()
}

func (e ExpiryDate) Time() time.Time {
	return e.t
}

func (e ExpiryDate) UnixMilli() int64 {
	return e.t.UnixMilli()
}

func (e ExpiryDate) Compare(o ExpiryDate) int {
	return e.t.Compare(o.t)
}

func (e ExpiryDate) Before(o ExpiryDate) bool {
	return e.t.Before(o.t)
}

func (e ExpiryDate) After(o ExpiryDate) bool {
	return e.t.After(o.t)
}

func (e ExpiryDate) Equal(o ExpiryDate) bool {
	return e.t.Equal(o.t)
}

func (e ExpiryDate) String() string {
	if e.t.IsZero() {
		return ""
	}
	return e.t.Format(core.DateFmt)
}

/*
Label
到期日所在月份的YYYYMM
*/
func (e ExpiryDate) Label() string {
	return e.t.Format("200601")
}

/*
ContractDate
经纪商返回的合约日期，包含标签月份和实际到期日。
支持的格式：
YYYYMM            仅月份，到期日取当月1日，Approx=true
YYYYMMDD          到期日在标签月份内
YYYYMM-YYYYMMDD   到期日不在标签月份内，如原油 202106 实际在 20210528 到期
*/
type ContractDate struct {
	Label  string
	Expiry ExpiryDate
	Approx bool // 到期日未知，仅为月份估计
}

func ParseContractDate(token string) (*ContractDate, *errs.Error) {
	token = strings.TrimSpace(token)
	label, expText, hasExp := strings.Cut(token, "-")
	month, err := parseLabel(label, token)
	if err != nil {
		return nil, err
	}
	if hasExp {
		if len(label) != 6 {
			return nil, errs.NewMsg(core.ErrInvalidLabel, "label must be YYYYMM: %q", token)
		}
		exp, err := ParseExpiry(expText)
		if err != nil {
			return nil, errs.NewMsg(core.ErrInvalidLabel, "invalid expiry in %q: %s", token, err.Short())
		}
		diff := monthsBetween(month, exp.t)
		if diff > maxExpiryOffsetMonths || diff < -maxExpiryOffsetMonths {
			return nil, errs.NewMsg(core.ErrInvalidLabel, "expiry %s too far from label %s", expText, label)
		}
		return &ContractDate{Label: label, Expiry: exp}, nil
	}
	if len(label) == 6 {
		return &ContractDate{Label: label, Expiry: ExpiryDate{t: month}, Approx: true}, nil
	}
	exp, err := ParseExpiry(label)
	if err != nil {
		return nil, err
	}
	return &ContractDate{Label: label[:6], Expiry: exp}, nil
}

// parseLabel 校验YYYYMM或YYYYMMDD，返回标签月份的1日
func parseLabel(label, token string) (time.Time, *errs.Error) {
	if (len(label) != 6 && len(label) != 8) || !isDigits(label) {
		return time.Time{}, errs.NewMsg(core.ErrInvalidLabel, "contract date must be YYYYMM or YYYYMMDD: %q", token)
	}
	year, _ := strconv.Atoi(label[:4])
	month, _ := strconv.Atoi(label[4:6])
	if year < 1900 || month < 1 || month > 12 {
		return time.Time{}, errs.NewMsg(core.ErrInvalidLabel, "invalid year/month in %q", token)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

/*
String
返回规范形式，ParseContractDate(d.String())得到相同的值
*/
func (d *ContractDate) String() string {
	if d.Approx {
		return d.Label
	}
	if d.Expiry.Label() == d.Label {
		return d.Expiry.String()
	}
	return d.Label + "-" + d.Expiry.String()
}

/*
ContractDateOf
从标签月份和实际到期日构建；expiry为零值时视为仅月份
*/
func ContractDateOf(label string, expiry ExpiryDate) (*ContractDate, *errs.Error) {
	if expiry.IsZero() {
		return ParseContractDate(label)
	}
	if len(label) != 6 {
		return nil, errs.NewMsg(core.ErrInvalidLabel, "label must be YYYYMM: %q", label)
	}
	return ParseContractDate(label + "-" + expiry.String())
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func isDigits(text string) bool {
	if text == "" {
		return false
	}
	for _, c := range text {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
