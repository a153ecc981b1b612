package utils

import (
	"strings"
)

/*
DeepCopyMap 将src合并到dst，两边都是map的键递归合并，其他情况src覆盖dst
*/
func DeepCopyMap(dst, src map[string]interface{}) {
	for k, v := range src {
		if srcMap, ok := v.(map[string]interface{}); ok {
			if dstMap, ok := dst[k].(map[string]interface{}); ok {
				DeepCopyMap(dstMap, srcMap)
				continue
			}
		}
		dst[k] = v
	}
}

/*
SplitSolid 字符串分割，忽略返回结果中的空字符串
*/
func SplitSolid(text string, sep string) []string {
	arr := strings.Split(text, sep)
	result := []string{}
	for _, str := range arr {
		str = strings.TrimSpace(str)
		if str != "" {
			result = append(result, str)
		}
	}
	return result
}
