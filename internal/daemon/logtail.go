package daemon

import (
	"bytes"
	"os"
	"strings"
)

// tailReadBlock bounds how much of the log file is read per tail request.
const tailReadBlock = 512 << 10

// tailLines returns the last n lines of the file at path.
func tailLines(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	size := info.Size()
	readSize := int64(tailReadBlock)
	offset := int64(0)
	if size > readSize {
		offset = size - readSize
	} else {
		readSize = size
	}

	buf := make([]byte, readSize)
	if _, err := file.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	// A mid-line start is expected when the read window begins inside the
	// file; drop the partial first line.
	if offset > 0 {
		if idx := bytes.IndexByte(buf, '\n'); idx >= 0 {
			buf = buf[idx+1:]
		}
	}

	text := strings.TrimRight(string(buf), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
