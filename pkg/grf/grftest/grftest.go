// Package grftest builds small GRF archives for tests.
package grftest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/Faultbox/heightmap2brs/pkg/encoding"
)

const grfMagic = "Master of Magic"

// File is one archive member.
type File struct {
	Name    string
	Content []byte
	// Stored skips compression.
	Stored bool
}

// Build writes a version 0x200 archive with the given members into a
// temporary directory and returns its path.
func Build(t testing.TB, files []File) string {
	t.Helper()

	header := make([]byte, 46)
	copy(header[0:15], grfMagic)
	binary.LittleEndian.PutUint32(header[42:], 0x200)

	var body, table bytes.Buffer
	for _, f := range files {
		data := f.Content
		if !f.Stored {
			data = deflate(t, f.Content)
		}

		aligned := len(data)
		if aligned%8 != 0 {
			aligned += 8 - aligned%8
		}

		// Names are stored with backslashes and EUC-KR encoded.
		name := encoding.UTF8ToEUCKR(strings.ReplaceAll(f.Name, "/", "\\"))
		table.Write(name)
		table.WriteByte(0)
		binary.Write(&table, binary.LittleEndian, uint32(len(data)))
		binary.Write(&table, binary.LittleEndian, uint32(aligned))
		binary.Write(&table, binary.LittleEndian, uint32(len(f.Content)))
		table.WriteByte(0x01)
		binary.Write(&table, binary.LittleEndian, uint32(body.Len()))

		body.Write(data)
		body.Write(make([]byte, aligned-len(data)))
	}

	binary.LittleEndian.PutUint32(header[30:], uint32(body.Len())) // TableOffset
	binary.LittleEndian.PutUint32(header[34:], 0)                  // Seed
	binary.LittleEndian.PutUint32(header[38:], uint32(len(files)+7))

	compressedTable := deflate(t, table.Bytes())

	var out bytes.Buffer
	out.Write(header)
	out.Write(body.Bytes())
	binary.Write(&out, binary.LittleEndian, uint32(len(compressedTable)))
	binary.Write(&out, binary.LittleEndian, uint32(table.Len()))
	out.Write(compressedTable)

	path := filepath.Join(t.TempDir(), "test.grf")
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		t.Fatalf("writing test archive: %v", err)
	}
	return path
}

func deflate(t testing.TB, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("compressing: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("compressing: %v", err)
	}
	return buf.Bytes()
}
