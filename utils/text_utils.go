package utils

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func SnakeToCamel(input string) string {
	parts := strings.Split(input, "_")
	caser := cases.Title(language.English)
	for i, text := range parts {
		parts[i] = caser.String(text)
	}
	return strings.Join(parts, "")
}

// MaskDBUrl 隐藏数据库连接中的密码，用于日志输出
func MaskDBUrl(dbUrl string) string {
	u, err := url.Parse(dbUrl)
	if err != nil || u.User == nil {
		return dbUrl
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
