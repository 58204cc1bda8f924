package bridge

import (
	"io"
	"os"
)

// FileChunkReader is the bridge's own file I/O, kept deliberately outside
// package vcdtrace per spec.md §6 ("the core never opens files itself").
// One instance is safe to reuse across queries since SeekAndChunks opens
// a fresh *os.File each call rather than holding a shared cursor.
type FileChunkReader struct {
	Path string
}

// SeekAndChunks opens Path, seeks to fileOffset, and calls yield with
// successive chunkSize-sized reads until yield reports no more input is
// wanted or the file is exhausted.
func (f FileChunkReader) SeekAndChunks(fileOffset int64, chunkSize int, yield func(chunk []byte) (more bool, err error)) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Seek(fileOffset, io.SeekStart); err != nil {
		return err
	}

	buf := make([]byte, chunkSize)
	for {
		n, readErr := file.Read(buf)
		if n > 0 {
			more, err := yield(buf[:n])
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}
