package packager

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// copyTree mirrors the src directory into dst, preserving file modes and
// recreating symlinks as links. Install trees routinely carry library
// symlink chains (lib.so -> lib.so.1), and a dangling link must stage as-is
// rather than being dereferenced or aborting the copy.
// Directory traversal is lexical, so staging is deterministic for a given
// source tree.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		if d.Type()&os.ModeSymlink != 0 {
			linkTarget, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("read link %s: %w", path, err)
			}

			return os.Symlink(linkTarget, target)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}

		return copyFile(path, target, info.Mode().Perm())
	})
}

// copyFile copies a single regular file with the given mode.
func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}

	defer func() {
		_ = in.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()

		return fmt.Errorf("copy %s: %w", dst, err)
	}

	return out.Close()
}

// fileExists reports whether path is an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

// dirExists reports whether path is an existing directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

// installRoot returns the location of the project's install directory inside
// a staging tree, e.g. <staging>/opt/myproject for /opt/myproject.
func installRoot(stagingDir, installDir string) string {
	return filepath.Join(stagingDir, installDir)
}

// treeSizeKB returns the total size of regular files under root in kilobytes,
// rounded up. Used for the Debian Installed-Size control field.
func treeSizeKB(root string) (int64, error) {
	var total int64

	err := filepath.WalkDir(root, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}

			total += info.Size()
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return (total + 1023) / 1024, nil
}
