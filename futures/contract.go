package futures

import "strings"

/*
Contract
一个期货品种的某个到期合约。流水线执行期间临时创建，经Registrar写入元数据库后才持久化。
(Instrument, Label) 在元数据库中唯一
*/
type Contract struct {
	Instrument string
	Label      string
	Expiry     ExpiryDate
	Approx     bool
}

func NewContract(instrument string, cd *ContractDate) *Contract {
	return &Contract{
		Instrument: instrument,
		Label:      cd.Label,
		Expiry:     cd.Expiry,
		Approx:     cd.Approx,
	}
}

func ContractKey(instrument, label string) string {
	var b strings.Builder
	b.Grow(len(instrument) + len(label) + 1)
	b.WriteString(instrument)
	b.WriteString("/")
	b.WriteString(label)
	return b.String()
}

func (c *Contract) Key() string {
	return ContractKey(c.Instrument, c.Label)
}

func (c *Contract) String() string {
	return c.Key() + "@" + c.Expiry.String()
}
