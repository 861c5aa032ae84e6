package fsutil

import (
	"fmt"
	"io"
	"os"

	"github.com/google/renameio"
)

// WriteFileAtomic 先写临时文件再重命名，读者不会看到半写状态
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := renameio.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}

// CopyFileAtomic 将 src 复制到 dst，同样经由临时文件+重命名
func CopyFileAtomic(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("打开源文件失败: %w", err)
	}
	defer in.Close()

	pending, err := renameio.TempFile("", dst)
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer pending.Cleanup()

	if err := pending.Chmod(perm); err != nil {
		return fmt.Errorf("设置文件权限失败: %w", err)
	}
	if _, err := io.Copy(pending, in); err != nil {
		return fmt.Errorf("复制文件失败: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("替换文件失败: %w", err)
	}
	return nil
}
