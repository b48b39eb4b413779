package ports

import "io/fs"

// FileSystem abstracts the file operations used for shell detection and
// configuration loading.
type FileSystem interface {
	// ReadFile reads the named file and returns its contents.
	ReadFile(name string) ([]byte, error)

	// Stat returns file info for the named file.
	Stat(name string) (fs.FileInfo, error)
}
