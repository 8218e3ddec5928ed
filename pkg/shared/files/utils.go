package files

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	serrors "github.com/sfl-io/sflreport/pkg/shared/errors"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// ExpandPath resolves paths that include a tilde (~) to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, path[2:]), nil
	}
	return path, nil
}

// ValidatePath checks if the given path is a valid file path for reading.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path stat error: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path %q is a directory, not a file", path)
	}

	if info.Mode()&os.ModeType != 0 {
		return fmt.Errorf("path %q is not a regular file", path)
	}
	return nil
}

// ReadLines reads a text file and splits it on LF or CRLF line breaks.
func ReadLines(path string) ([]string, error) {
	if path == "" {
		return nil, serrors.Validation("arg 'path' must not be empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.New(serrors.KindIO,
			fmt.Sprintf("encountered an error when reading file path %q", path), err)
	}
	return lineBreak.Split(string(data), -1), nil
}

// SearchFile walks dir recursively and returns the first file whose name ends
// with fileName. Matches found in subdirectories are returned to the caller.
// An empty string and nil error mean nothing matched.
func SearchFile(dir, fileName string) (string, error) {
	if dir == "" {
		return "", serrors.Validation("arg 'dir' must not be empty")
	}
	if fileName == "" {
		return "", serrors.Validation("arg 'fileName' must not be empty")
	}

	found, err := searchFile(dir, fileName)
	if err != nil {
		return "", serrors.New(serrors.KindIO,
			fmt.Sprintf("encountered an error when searching file %q in directory %q", fileName, dir), err)
	}
	return found, nil
}

func searchFile(dir, fileName string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		filePath := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			found, err := searchFile(filePath, fileName)
			if err != nil {
				return "", err
			}
			if found != "" {
				return found, nil
			}
			continue
		}
		if strings.HasSuffix(entry.Name(), fileName) {
			return filePath, nil
		}
	}
	return "", nil
}

// FindBySuffix walks root and returns every file path (slash separated,
// relative to root) that ends with suffix.
func FindBySuffix(root, suffix string) ([]string, error) {
	if root == "" {
		return nil, serrors.Validation("arg 'root' must not be empty")
	}

	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access %q: %w", path, err)
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasSuffix(rel, suffix) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, serrors.New(serrors.KindIO,
			fmt.Sprintf("encountered an error when searching %q under %q", suffix, root), err)
	}
	return matches, nil
}

// DirectoryExists reports whether path exists.
func DirectoryExists(path string) (bool, error) {
	if path == "" {
		return false, serrors.Validation("arg 'path' must not be empty")
	}

	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, serrors.New(serrors.KindIO,
		fmt.Sprintf("encountered an error when checking whether path %q exists", path), err)
}

// FileExists reports whether a file exists at path.
func FileExists(path string) (bool, error) {
	if path == "" {
		return false, serrors.Validation("arg 'path' must not be empty")
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, serrors.New(serrors.KindIO,
			fmt.Sprintf("encountered an error when checking whether file %q exists", path), err)
	}
	return true, nil
}

// CreateFolderIfNotExists checks if a folder exists, and if not, creates it.
func CreateFolderIfNotExists(folder string) error {
	if _, err := os.Stat(folder); os.IsNotExist(err) {
		if err := os.MkdirAll(folder, os.ModePerm); err != nil {
			return fmt.Errorf("unable to create folder %q: %w", folder, err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to check folder %q: %w", folder, err)
	}
	return nil
}

// WriteFile writes data to outputFile, creating the parent folder when needed.
func WriteFile(outputFile string, data []byte) error {
	if err := CreateFolderIfNotExists(filepath.Dir(outputFile)); err != nil {
		return err
	}

	file, err := os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed creating file: %w", err)
	}
	defer file.Close()

	datawriter := bufio.NewWriter(file)
	defer datawriter.Flush()

	if _, err := datawriter.Write(data); err != nil {
		return fmt.Errorf("error writing data to file: %w", err)
	}

	return nil
}

// EnsureWithinRoot resolves target to an absolute path and rejects paths outside root.
func EnsureWithinRoot(root, target string) (string, error) {
	if root == "" {
		return filepath.Clean(target), nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", target, err)
	}

	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q escapes root %q", absTarget, absRoot)
	}

	return absTarget, nil
}
