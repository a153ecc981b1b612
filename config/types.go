package config

var (
	Data    *Config
	Args    *CmdArgs
	DataDir string
	Name    string
	Loaded  bool
)

// Config 根配置
type Config struct {
	Name     string          `yaml:"name" mapstructure:"name"`
	DataDir  string          `yaml:"data_dir,omitempty" mapstructure:"data_dir"`
	Database *DatabaseConfig `yaml:"database,omitempty" mapstructure:"database"`
	Exchange *ExchangeConfig `yaml:"exchange" mapstructure:"exchange" validate:"required"`
	Seed     *SeedConfig     `yaml:"seed" mapstructure:"seed" validate:"required"`
}

type DatabaseConfig struct {
	Url         string `yaml:"url" mapstructure:"url"`
	MaxPoolSize int    `yaml:"max_pool_size" mapstructure:"max_pool_size" validate:"gte=0"`
	AutoCreate  bool   `yaml:"auto_create" mapstructure:"auto_create"`
}

type ExchangeConfig struct {
	Name         string                 `yaml:"name" mapstructure:"name" validate:"required"`
	Market       string                 `yaml:"market" mapstructure:"market"`
	ContractType string                 `yaml:"contract_type" mapstructure:"contract_type"`
	Options      map[string]interface{} `yaml:"options,omitempty" mapstructure:"options"`
	// Roots 品种代码 -> 交易所合约前缀，如 CRUDE_W: CL
	Roots map[string]string `yaml:"roots,omitempty" mapstructure:"roots"`
}

type SeedConfig struct {
	Cutoff      string   `yaml:"cutoff" mapstructure:"cutoff"`           // YYYYMMDD，晚于此日期到期的合约不处理
	Frequencies []string `yaml:"frequencies" mapstructure:"frequencies"` // 1h, 1d
	Instruments []string `yaml:"instruments" mapstructure:"instruments"`
	Medium      string   `yaml:"medium" mapstructure:"medium" validate:"omitempty,oneof=db file"`
	Concur      int      `yaml:"concur" mapstructure:"concur" validate:"gte=0"`
	WriteEmpty  bool     `yaml:"write_empty" mapstructure:"write_empty"` // 合并结果为空时是否覆盖写入
	FetchDays   int      `yaml:"fetch_days" mapstructure:"fetch_days" validate:"gte=0"`
}
