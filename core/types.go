package core

/*
DownRange
一次下载任务的时间区间，单位毫秒，左闭右开
*/
type DownRange struct {
	Start int64
	End   int64
}

func (r *DownRange) Empty() bool {
	return r == nil || r.End <= r.Start
}
