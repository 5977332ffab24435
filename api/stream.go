package api

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const streamReadSize = 4096

// readStream consumes body sequentially, decoding UTF-8 across read boundaries:
// a rune split between two reads is held back until it is complete, and
// ill-formed bytes become U+FFFD. Each non-empty fragment is passed to onChunk
// before the next read, so fragments are observed in arrival order.
func readStream(body io.Reader, onChunk ChunkCallback) (string, error) {
	reader := transform.NewReader(body, unicode.UTF8.NewDecoder())
	buf := make([]byte, streamReadSize)
	var full strings.Builder

	for {
		n, err := reader.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			full.WriteString(chunk)
			if onChunk != nil {
				onChunk(chunk)
			}
		}
		if errors.Is(err, io.EOF) {
			return full.String(), nil
		}
		if err != nil {
			return full.String(), fmt.Errorf("failed to read /chat stream: %w", err)
		}
	}
}
