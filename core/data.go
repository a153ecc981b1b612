package core

var (
	RunID string // 当前批次运行ID，每次seed调用生成
)

const (
	SecsMin  = 60
	SecsHour = SecsMin * 60
	SecsDay  = SecsHour * 24
)

const (
	MSMinStamp = 157766400000 // 1975-01-01T00:00:00.000Z
)

const (
	KBatchSize      = 1000 // 单次请求交易所最大返回K线数量
	DefaultDateFmt  = "2006-01-02 15:04:05"
	DateFmt         = "20060102"
	DefaultCutoff   = "20241231"
	DefaultFetchDay = 400 // 合约无上市时间时，从到期日往前下载的天数
	StepTotal       = 1000
)

const (
	MediumDb   = "db"
	MediumFile = "file"
)
