// Package mmap provides read-only memory-mapped file access.
//
// Local image inputs are mapped instead of read so that large files are
// decoded straight from the page cache.
//
//	m, err := mmap.Open("photo.png")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	img, err := png.Decode(m.Reader())
//
// Unix platforms use mmap(2) and madvise(2). Windows uses
// CreateFileMapping/MapViewOfFile and ignores access hints.
//
// A Mapping is safe for concurrent reads. Close is idempotent; callers must
// not touch the result of Bytes after Close returns.
package mmap
