package core

import "strconv"

const (
	ErrBadConfig = -1*iota - 100
	ErrIOReadFail
	ErrIOWriteFail
	ErrDbConnFail
	ErrDbReadFail
	ErrDbExecFail
	ErrDbUniqueViolation
	ErrInvalidTF
	ErrRunTime
	ErrMarshalFail

	ErrInvalidLabel
	ErrBrokerUnavailable
	ErrMissingData
	ErrStoreUnavailable
)

var ErrCodeNames = map[int]string{
	ErrBadConfig:         "BadConfig",
	ErrIOReadFail:        "IOReadFail",
	ErrIOWriteFail:       "IOWriteFail",
	ErrDbConnFail:        "DbConnFail",
	ErrDbReadFail:        "DbReadFail",
	ErrDbExecFail:        "DbExecFail",
	ErrDbUniqueViolation: "DuplicateKey",
	ErrInvalidTF:         "InvalidTF",
	ErrRunTime:           "Unexpected",
	ErrMarshalFail:       "MarshalFail",
	ErrInvalidLabel:      "InvalidLabelFormat",
	ErrBrokerUnavailable: "BrokerUnavailable",
	ErrMissingData:       "MissingData",
	ErrStoreUnavailable:  "StoreUnavailable",
}

/*
ErrName
返回错误码的名称，未登记的错误码返回 Code<n>
*/
func ErrName(code int) string {
	if name, ok := ErrCodeNames[code]; ok {
		return name
	}
	return "Code" + strconv.Itoa(code)
}
