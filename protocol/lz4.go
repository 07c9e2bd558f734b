package protocol

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressFrame compresses plain using LZ4 frame format, the optional
// wire compression switched on by TransportOptions.Compress (no
// ConnectOptions entry is exchanged for it).
func lz4CompressFrame(plain []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(plain); err != nil {
		return nil, fmt.Errorf("protocol: lz4 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("protocol: lz4 compress: %w", err)
	}
	return buf.Bytes(), nil
}

// lz4DecompressFrame decompresses an LZ4-framed message body, sizing the
// output buffer from the message header's declared uncompressed size.
func lz4DecompressFrame(compressed []byte, uncompressedSize int) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(compressed))
	out := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(r, out); err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("protocol: lz4 decompress: %w", err)
	}
	return out, nil
}
