package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banexg/log"
	"github.com/banbox/banseed/core"
	"github.com/banbox/banseed/futures"
	"github.com/banbox/banseed/utils"
	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

func GetDataDir() string {
	if DataDir == "" {
		DataDir = getEnvPath("BanDataDir")
	}
	return DataDir
}

func getEnvPath(key string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return ""
	}
	absPath, err := filepath.Abs(val)
	if err != nil {
		panic(err)
	}
	return strings.TrimSpace(absPath)
}

func LoadConfig(args *CmdArgs) *errs.Error {
	if Loaded {
		return nil
	}
	cfg, err := GetConfig(args, true)
	if err != nil {
		return err
	}
	ApplyConfig(args, cfg)
	return nil
}

/*
GetConfig
依次合并数据目录下的config.yml、config.local.yml以及-config指定的文件，再应用命令行参数
*/
func GetConfig(args *CmdArgs, showLog bool) (*Config, *errs.Error) {
	args.Init()
	if args.DataDir != "" {
		DataDir = args.DataDir
	}
	var paths []string
	if !args.NoDefault {
		dataDir := GetDataDir()
		if dataDir == "" {
			return nil, errs.NewMsg(errs.CodeParamRequired, "-datadir or env `BanDataDir` is required")
		}
		tryNames := []string{"config.yml", "config.local.yml"}
		for _, name := range tryNames {
			path := filepath.Join(dataDir, name)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	paths = append(paths, args.Configs...)
	res, err := ParseConfigs(paths, showLog)
	if err != nil {
		return nil, err
	}
	err = res.Apply(args)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func ParseConfigs(paths []string, showLog bool) (*Config, *errs.Error) {
	var merged = make(map[string]interface{})
	for _, path := range paths {
		if showLog {
			log.Info("Using " + path)
		}
		fileData, err := os.ReadFile(ParsePath(path))
		if err != nil {
			return nil, errs.NewFull(core.ErrIOReadFail, err, "Read %s Fail", path)
		}
		var unpak map[string]interface{}
		err = yaml.Unmarshal(fileData, &unpak)
		if err != nil {
			return nil, errs.NewFull(errs.CodeUnmarshalFail, err, "Unmarshal %s Fail", path)
		}
		utils.DeepCopyMap(merged, unpak)
	}
	return decodeConfig(merged)
}

func ParseYmlConfig(fileData []byte, path string) (*Config, *errs.Error) {
	var unpak map[string]interface{}
	err := yaml.Unmarshal(fileData, &unpak)
	if err != nil {
		return nil, errs.NewFull(errs.CodeUnmarshalFail, err, "Unmarshal %s Fail", path)
	}
	return decodeConfig(unpak)
}

func decodeConfig(data map[string]interface{}) (*Config, *errs.Error) {
	var res Config
	// 弱类型解码，允许 cutoff: 20241231 这类未加引号的写法
	err := mapstructure.WeakDecode(data, &res)
	if err != nil {
		return nil, errs.NewFull(errs.CodeUnmarshalFail, err, "decode Config Fail")
	}
	return &res, nil
}

/*
Apply
填充默认值并应用命令行参数，最后校验
*/
func (c *Config) Apply(args *CmdArgs) *errs.Error {
	if c.Name == "" {
		c.Name = "banseed"
	}
	if c.DataDir == "" {
		c.DataDir = GetDataDir()
	}
	if c.Database == nil {
		c.Database = &DatabaseConfig{}
	}
	if c.Seed == nil {
		c.Seed = &SeedConfig{}
	}
	if c.Exchange == nil {
		c.Exchange = &ExchangeConfig{}
	}
	if args != nil {
		if args.MaxPoolSize > 0 {
			c.Database.MaxPoolSize = args.MaxPoolSize
		}
		if len(args.Instruments) > 0 {
			c.Seed.Instruments = args.Instruments
		}
		if args.Cutoff != "" {
			c.Seed.Cutoff = args.Cutoff
		}
		if len(args.Frequencies) > 0 {
			c.Seed.Frequencies = args.Frequencies
		}
		if args.Medium != "" {
			c.Seed.Medium = args.Medium
		}
		if args.Concur > 0 {
			c.Seed.Concur = args.Concur
		}
		if args.WriteEmpty {
			c.Seed.WriteEmpty = true
		}
	}
	seed := c.Seed
	if seed.Cutoff == "" {
		seed.Cutoff = core.DefaultCutoff
	}
	if seed.Medium == "" {
		seed.Medium = core.MediumDb
	}
	if seed.Concur <= 0 {
		seed.Concur = 1
	}
	if seed.FetchDays <= 0 {
		seed.FetchDays = core.DefaultFetchDay
	}
	if len(seed.Frequencies) == 0 {
		for _, f := range futures.DefaultFrequencies {
			seed.Frequencies = append(seed.Frequencies, string(f))
		}
	}
	return c.Validate()
}

func ApplyConfig(args *CmdArgs, c *Config) {
	Loaded = true
	Name = c.Name
	Args = args
	Data = c
	if c.DataDir != "" {
		DataDir = c.DataDir
	}
}

/*
CutoffDate 配置的截止日期，到期日晚于此日期的合约不处理
*/
func (c *SeedConfig) CutoffDate() (futures.ExpiryDate, *errs.Error) {
	return futures.ParseExpiry(c.Cutoff)
}

func (c *SeedConfig) Freqs() ([]futures.Frequency, *errs.Error) {
	return futures.ParseFrequencies(c.Frequencies)
}

func ParsePath(path string) string {
	if strings.HasPrefix(path, "$") {
		parts := strings.SplitN(path[1:], "/", 2)
		dir := os.Getenv(parts[0])
		if len(parts) == 1 {
			return dir
		}
		return filepath.Join(dir, parts[1])
	}
	return path
}

func (c *Config) DumpYaml() ([]byte, *errs.Error) {
	data, err_ := yaml.Marshal(c)
	if err_ != nil {
		return nil, errs.New(core.ErrMarshalFail, err_)
	}
	return data, nil
}

/*
Desensitize 返回隐藏数据库密码和交易所选项的副本，用于输出
*/
func (c *Config) Desensitize() *Config {
	res := *c
	if c.Database != nil {
		db := *c.Database
		db.Url = utils.MaskDBUrl(db.Url)
		res.Database = &db
	}
	if c.Exchange != nil {
		exg := *c.Exchange
		if len(exg.Options) > 0 {
			exg.Options = map[string]interface{}{}
			for k := range c.Exchange.Options {
				exg.Options[k] = "***"
			}
		}
		res.Exchange = &exg
	}
	return &res
}
