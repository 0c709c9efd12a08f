package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyDir copies src into dst recursively and returns the number of files
// copied. A missing src copies nothing.
func CopyDir(src, dst string) (int, error) {
	srcInfo, err := os.Stat(src)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !srcInfo.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", src)
	}
	return copyTree(src, dst)
}

func copyTree(src, dst string) (int, error) {
	if err := os.MkdirAll(dst, 0o750); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			n, err := copyTree(srcPath, dstPath)
			count += n
			if err != nil {
				return count, err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src) //nolint:gosec // project static asset
	if err != nil {
		return err
	}
	defer func() { _ = srcFile.Close() }()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return dstFile.Close()
}
