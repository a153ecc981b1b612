package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/banbox/banexg/errs"
)

func Exists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

func EnsureDir(dir string, perm os.FileMode) error {
	if Exists(dir) {
		return nil
	}

	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("failed to create directory: '%s', error: '%s'", dir, err.Error())
	}

	return nil
}

/*
WriteFile
写入文件，父目录不存在时自动创建。先写入同目录临时文件再重命名，读者不会看到写了一半的文件
*/
func WriteFile(path string, data []byte) *errs.Error {
	return WriteFileWith(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}

func WriteFileWith(path string, write func(f *os.File) error) *errs.Error {
	dir := filepath.Dir(path)
	if err_ := EnsureDir(dir, 0755); err_ != nil {
		return errs.New(errs.CodeIOWriteFail, err_)
	}
	tmp, err_ := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err_ != nil {
		return errs.New(errs.CodeIOWriteFail, err_)
	}
	tmpPath := tmp.Name()
	err_ = write(tmp)
	if err_ == nil {
		err_ = tmp.Sync()
	}
	if errClose := tmp.Close(); err_ == nil {
		err_ = errClose
	}
	if err_ == nil {
		err_ = os.Rename(tmpPath, path)
	}
	if err_ != nil {
		_ = os.Remove(tmpPath)
		return errs.NewFull(errs.CodeIOWriteFail, err_, "write %s fail", path)
	}
	return nil
}
