// Package storage provides byte-oriented file access with hardware
// abstraction, standing in for the flash filesystem's open/read/write/seek
// primitives. The real implementation uses the host filesystem (the corpus
// carries no flash/LFS driver library, so this is stdlib-backed by
// necessity); the fake implementation keeps everything in memory.
package storage

// FS is the narrow filesystem surface the core packages need: random
// access reads and writes at an offset, directory creation, and delete.
// There is no Open/Close in this interface because every call is a single
// short-lived operation on a small file (one header sector, one entry
// record), not a generic fs.FS.
type FS interface {
	// ReadFile reads the whole file. Returns an error if it does not
	// exist or cannot be read.
	ReadFile(path string) ([]byte, error)

	// ReadFileAt reads length bytes starting at offset. Returns an error
	// if the file is missing or shorter than offset+length.
	ReadFileAt(path string, offset int64, length int) ([]byte, error)

	// WriteFileAt writes data at offset, creating the file (and growing
	// it with zero bytes up to offset if needed) if it does not exist.
	// Durable on return.
	WriteFileAt(path string, offset int64, data []byte) error

	// Remove deletes the file. Removing a missing file is not an error.
	Remove(path string) error

	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error
}
