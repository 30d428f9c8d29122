package store

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/freeeve/kalah/internal/codec"
)

// keySize is the on-disk size of one record.
const keySize = 8

// ErrTruncated is returned with the complete keys read so far when a stream
// ends inside a record.
var ErrTruncated = errors.New("truncated trailing record")

// ReadKeys reads little-endian uint64 keys until EOF.
func ReadKeys(r io.Reader) ([]codec.Key, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	var keys []codec.Key
	var buf [keySize]byte
	for {
		_, err := io.ReadFull(br, buf[:])
		switch {
		case err == nil:
			keys = append(keys, codec.Key(binary.LittleEndian.Uint64(buf[:])))
		case errors.Is(err, io.EOF):
			return keys, nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			return keys, ErrTruncated
		default:
			return keys, err
		}
	}
}

// WriteKeys writes keys as a flat sequence of little-endian uint64s.
func WriteKeys(w io.Writer, keys []codec.Key) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	var buf [keySize]byte
	for _, k := range keys {
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func isCompressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// ReadKeysFile reads a key file, transparently decompressing *.zst paths.
func ReadKeysFile(path string) ([]codec.Key, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !isCompressed(path) {
		return ReadKeys(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader %s: %w", path, err)
	}
	defer dec.Close()
	return ReadKeys(dec)
}

// WriteKeysFile replaces path with keys. The data goes to path+".tmp" first
// and is renamed into place after a successful sync. *.zst paths are
// compressed.
func WriteKeysFile(path string, keys []codec.Key) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	if err := writeKeysTo(f, path, keys); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func writeKeysTo(w io.Writer, path string, keys []codec.Key) error {
	if !isCompressed(path) {
		return WriteKeys(w, keys)
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	if err := WriteKeys(enc, keys); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
