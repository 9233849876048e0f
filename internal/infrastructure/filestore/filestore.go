// Package filestore 提供媒体文件的本地磁盘存储
// 字节内容落盘，元数据由 MediaRepository 维护
package filestore

import (
	"io"
	"os"
	"path/filepath"

	"mingle_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// Store 本地文件存储
type Store struct {
	baseDir string
}

// NewStore 创建文件存储实例，目录不存在时自动创建
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeServerBusy, "create upload dir %s", baseDir)
	}
	return &Store{baseDir: baseDir}, nil
}

// Save 将内容写入 baseDir 下的指定文件，返回物理路径
// filename 必须是系统生成的唯一文件名，不含路径分隔符
func (s *Store) Save(filename string, src io.Reader) (string, error) {
	path := filepath.Join(s.baseDir, filepath.Base(filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", errorx.Wrapf(err, errorx.CodeServerBusy, "create file %s", path)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		// 写入失败时清理半成品文件
		_ = os.Remove(path)
		return "", errorx.Wrapf(err, errorx.CodeServerBusy, "write file %s", path)
	}
	return path, nil
}

// Path 返回文件的物理路径，不检查存在性
func (s *Store) Path(filename string) string {
	return filepath.Join(s.baseDir, filepath.Base(filename))
}

// Remove 删除物理文件
// 文件不存在视为成功，元数据删除后重复调用是安全的
func (s *Store) Remove(filename string) error {
	path := filepath.Join(s.baseDir, filepath.Base(filename))
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		zap.L().Error("remove file failed", zap.String("path", path), zap.Error(err))
		return errorx.Wrapf(err, errorx.CodeServerBusy, "remove file %s", path)
	}
	return nil
}
