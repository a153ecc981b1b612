package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/banbox/banexg/errs"
	"github.com/banbox/banseed/core"
	"github.com/go-playground/validator/v10"
)

var val = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() *errs.Error {
	errArr := val.Struct(c)
	if errArr != nil {
		var ive *validator.InvalidValidationError
		if errors.As(errArr, &ive) {
			return errs.New(core.ErrBadConfig, ive)
		}
		var vErrs validator.ValidationErrors
		if errors.As(errArr, &vErrs) {
			texts := make([]string, 0, len(vErrs))
			for _, err := range vErrs {
				texts = append(texts, fmt.Sprintf("[%s]: '%v', must %s", err.Namespace(), err.Value(), err.Tag()))
			}
			return errs.NewMsg(core.ErrBadConfig, "invalid config: %s", strings.Join(texts, ", "))
		}
		return errs.New(core.ErrBadConfig, errArr)
	}
	if c.Seed.Medium == core.MediumDb && c.Database.Url == "" {
		return errs.NewMsg(core.ErrBadConfig, "database.url is required when seed.medium is db")
	}
	if _, err := c.Seed.CutoffDate(); err != nil {
		return errs.NewMsg(core.ErrBadConfig, "invalid seed.cutoff: %s", err.Short())
	}
	if _, err := c.Seed.Freqs(); err != nil {
		return errs.NewMsg(core.ErrBadConfig, "invalid seed.frequencies: %s", err.Short())
	}
	return nil
}
