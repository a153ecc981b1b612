package seed

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/banbox/banseed/btime"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/futures"
	"github.com/olekukonko/tablewriter"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ContractState int

const (
	StateEnumerated ContractState = iota
	StateExpiryFiltered
	StatePriceSeeded
	StateRegistered
	StateSkipped
	StateFailed
)

var stateNames = map[ContractState]string{
	StateEnumerated:     "Enumerated",
	StateExpiryFiltered: "ExpiryFiltered",
	StatePriceSeeded:    "PriceSeeded",
	StateRegistered:     "Registered",
	StateSkipped:        "Skipped",
	StateFailed:         "Failed",
}

func (s ContractState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "State" + strconv.Itoa(int(s))
}

func (s ContractState) Terminal() bool {
	return s == StateRegistered || s == StateSkipped || s == StateFailed
}

const (
	SkipAfterCutoff = "after_cutoff"
	SkipRegistered  = "already_registered"
)

/*
ContractResult
单个合约的处理结果，State为终态
*/
type ContractResult struct {
	Token    string // 经纪商返回的合约日期
	Label    string
	Expiry   futures.ExpiryDate
	State    ContractState
	Reason   string // 跳过原因
	Bars     int    // 合并后K线数量
	Freqs    []futures.Frequency
	FreqErrs map[futures.Frequency]*errs.Error
	Err      *errs.Error
}

func (r *ContractResult) skip(reason string) *ContractResult {
	r.State = StateSkipped
	r.Reason = reason
	return r
}

func (r *ContractResult) fail(err *errs.Error) *ContractResult {
	r.State = StateFailed
	r.Err = err
	return r
}

func (r *ContractResult) errText() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %s", core.ErrName(r.Err.Code), r.Err.Message())
	}
	if len(r.FreqErrs) > 0 {
		freqs := make([]string, 0, len(r.FreqErrs))
		for f := range r.FreqErrs {
			freqs = append(freqs, string(f))
		}
		sort.Strings(freqs)
		texts := make([]string, 0, len(freqs))
		for _, f := range freqs {
			texts = append(texts, f+": "+r.FreqErrs[futures.Frequency(f)].Short())
		}
		return strings.Join(texts, "; ")
	}
	return ""
}

/*
SeedingReport
一个品种一次运行的报告，按枚举顺序记录每个合约的终态
*/
type SeedingReport struct {
	Instrument string
	RunID      string
	Cutoff     string
	StartMS    int64
	StopMS     int64
	Results    []*ContractResult
}

func NewSeedingReport(instrument, runID string, cutoff futures.ExpiryDate) *SeedingReport {
	return &SeedingReport{
		Instrument: instrument,
		RunID:      runID,
		Cutoff:     cutoff.String(),
		StartMS:    btime.UTCStamp(),
	}
}

func (r *SeedingReport) Add(res *ContractResult) *SeedingReport {
	r.Results = append(r.Results, res)
	return r
}

func (r *SeedingReport) Count(state ContractState) int {
	num := 0
	for _, res := range r.Results {
		if res.State == state {
			num += 1
		}
	}
	return num
}

// Get 按合约标签(YYYYMM)或原始日期查找
func (r *SeedingReport) Get(label string) *ContractResult {
	for _, res := range r.Results {
		if res.Label == label || res.Token == label {
			return res
		}
	}
	return nil
}

func (r *SeedingReport) Summary() string {
	return fmt.Sprintf("%s: %d contracts, registered %d, skipped %d, failed %d", r.Instrument,
		len(r.Results), r.Count(StateRegistered), r.Count(StateSkipped), r.Count(StateFailed))
}

func (r *SeedingReport) rows() [][]string {
	res := make([][]string, 0, len(r.Results))
	for _, it := range r.Results {
		expiry := ""
		if !it.Expiry.IsZero() {
			expiry = it.Expiry.String()
		}
		res = append(res, []string{it.Label, it.Token, expiry, it.State.String(), it.Reason,
			strconv.Itoa(it.Bars), futures.JoinFrequencies(it.Freqs), it.errText()})
	}
	return res
}

var reportHeads = []string{"Label", "Token", "Expiry", "State", "Reason", "Bars", "Freqs", "Error"}

/*
Table 以文本表格输出报告
*/
func (r *SeedingReport) Table() string {
	var b bytes.Buffer
	b.WriteString(r.Summary())
	b.WriteString("\n")
	table := tablewriter.NewWriter(&b)
	table.Header(reportHeads)
	for _, row := range r.rows() {
		if err_ := table.Append(row); err_ != nil {
			log.Warn("append report row fail", zap.Error(err_))
		}
	}
	if err_ := table.Render(); err_ != nil {
		log.Warn("render report fail", zap.Error(err_))
	}
	return b.String()
}

// InstrumentReport 批量运行中单个品种的结果，Err为枚举等品种级错误
type InstrumentReport struct {
	Instrument string
	Report     *SeedingReport
	Err        *errs.Error
}

type BatchReport struct {
	RunID   string
	Cutoff  string
	StartMS int64
	StopMS  int64
	Items   []*InstrumentReport
}

func (b *BatchReport) Get(instrument string) *InstrumentReport {
	for _, it := range b.Items {
		if it.Instrument == instrument {
			return it
		}
	}
	return nil
}

func (b *BatchReport) FailedInstruments() []string {
	var res []string
	for _, it := range b.Items {
		if it.Err != nil {
			res = append(res, it.Instrument)
		}
	}
	return res
}

func (b *BatchReport) Text() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("run %s, cutoff %s, %d instruments\n", b.RunID, b.Cutoff, len(b.Items)))
	for _, it := range b.Items {
		if it.Err != nil {
			sb.WriteString(fmt.Sprintf("%s: FAILED %s\n", it.Instrument, it.Err.Short()))
			continue
		}
		if it.Report != nil {
			sb.WriteString(it.Report.Table())
		}
	}
	return sb.String()
}

/*
ExportExcel
每个品种一个工作表，品种级失败的写入首个Summary表。
工作表名不区分大小写且唯一，Summary表的Sheet列记录品种对应的表名
*/
func (b *BatchReport) ExportExcel(path string) *errs.Error {
	f := excelize.NewFile()
	defer func() {
		if err_ := f.Close(); err_ != nil {
			log.Warn("close excel fail", zap.Error(err_))
		}
	}()
	if err_ := f.SetSheetName("Sheet1", summarySheet); err_ != nil {
		return errs.New(core.ErrIOWriteFail, err_)
	}
	sumHeads := []interface{}{"Instrument", "Sheet", "Contracts", "Registered", "Skipped", "Failed", "Error"}
	if err_ := f.SetSheetRow(summarySheet, "A1", &sumHeads); err_ != nil {
		return errs.New(core.ErrIOWriteFail, err_)
	}
	used := map[string]bool{strings.ToLower(summarySheet): true}
	for i, it := range b.Items {
		row := []interface{}{it.Instrument, "", 0, 0, 0, 0, ""}
		var sheet string
		if it.Err != nil {
			row[6] = it.Err.Short()
		} else if it.Report != nil {
			rep := it.Report
			sheet = uniqueSheetName(it.Instrument, used)
			row[1] = sheet
			row[2] = len(rep.Results)
			row[3] = rep.Count(StateRegistered)
			row[4] = rep.Count(StateSkipped)
			row[5] = rep.Count(StateFailed)
		}
		cell, err_ := excelize.CoordinatesToCellName(1, i+2)
		if err_ != nil {
			return errs.New(core.ErrIOWriteFail, err_)
		}
		if err_ = f.SetSheetRow(summarySheet, cell, &row); err_ != nil {
			return errs.New(core.ErrIOWriteFail, err_)
		}
		if sheet == "" {
			continue
		}
		if err := writeReportSheet(f, sheet, it.Report); err != nil {
			return err
		}
	}
	if err_ := f.SaveAs(path); err_ != nil {
		return errs.NewFull(core.ErrIOWriteFail, err_, "save %s fail", path)
	}
	return nil
}

func writeReportSheet(f *excelize.File, sheet string, rep *SeedingReport) *errs.Error {
	if _, err_ := f.NewSheet(sheet); err_ != nil {
		return errs.New(core.ErrIOWriteFail, err_)
	}
	heads := make([]interface{}, len(reportHeads))
	for i, h := range reportHeads {
		heads[i] = h
	}
	if err_ := f.SetSheetRow(sheet, "A1", &heads); err_ != nil {
		return errs.New(core.ErrIOWriteFail, err_)
	}
	for i, row := range rep.rows() {
		cell, err_ := excelize.CoordinatesToCellName(1, i+2)
		if err_ != nil {
			return errs.New(core.ErrIOWriteFail, err_)
		}
		if err_ = f.SetSheetRow(sheet, cell, &row); err_ != nil {
			return errs.New(core.ErrIOWriteFail, err_)
		}
	}
	return nil
}

const (
	summarySheet  = "Summary"
	maxSheetRunes = 31
)

/*
uniqueSheetName
excel工作表名最长31字符，不能含 []:*?/\ ，不能以单引号开头或结尾，且不区分大小写。
重名时追加 _2、_3 等后缀，used记录已占用的名称(小写)
*/
func uniqueSheetName(instrument string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, instrument)
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Sheet"
	}
	name := strings.TrimRight(truncRunes(base, maxSheetRunes), "'")
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := "_" + strconv.Itoa(i)
		name = truncRunes(base, maxSheetRunes-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncRunes(text string, num int) string {
	runes := []rune(text)
	if len(runes) <= num {
		return text
	}
	return string(runes[:num])
}
