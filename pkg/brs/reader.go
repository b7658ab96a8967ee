package brs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zlib"
)

// ErrUnsupportedVersion is returned for saves older than the written format.
var ErrUnsupportedVersion = errors.New("unsupported BRS version")

// Info is the metadata stored in the two save headers.
type Info struct {
	Version     uint16
	GameVersion int32
	Map         string
	Author      User
	Host        User
	Description string
	SaveTime    time.Time
	BrickCount  int32
	BrickAssets []string
	Materials   []string
	Owners      []OwnerInfo
}

// OwnerInfo is a brick owner with the number of bricks it owns.
type OwnerInfo struct {
	User
	Bricks int32
}

// ReadInfo decodes the headers of a save written by Write.
func ReadInfo(r io.Reader) (*Info, error) {
	var hdr [9]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if string(hdr[:3]) != magic {
		return nil, ErrInvalidMagic
	}
	info := &Info{
		Version:     binary.LittleEndian.Uint16(hdr[3:]),
		GameVersion: int32(binary.LittleEndian.Uint32(hdr[5:])),
	}
	if info.Version < Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, info.Version)
	}

	h1, err := readCompressed(r)
	if err != nil {
		return nil, fmt.Errorf("reading header 1: %w", err)
	}
	d := &decoder{r: bytes.NewReader(h1)}
	info.Map = d.string()
	info.Author.Name = d.string()
	info.Description = d.string()
	info.Author.ID = d.uuid()
	info.Host.Name = d.string()
	info.Host.ID = d.uuid()
	ticks := d.i64()
	info.SaveTime = time.Unix(0, (ticks-ueEpochOffset)*100)
	info.BrickCount = d.i32()
	if d.err != nil {
		return nil, fmt.Errorf("decoding header 1: %w", d.err)
	}

	h2, err := readCompressed(r)
	if err != nil {
		return nil, fmt.Errorf("reading header 2: %w", err)
	}
	d = &decoder{r: bytes.NewReader(h2)}
	d.strings() // mods
	info.BrickAssets = d.strings()
	for n := d.i32(); n > 0 && d.err == nil; n-- {
		d.i32() // palette color
	}
	info.Materials = d.strings()
	for n := d.i32(); n > 0 && d.err == nil; n-- {
		var o OwnerInfo
		o.ID = d.uuid()
		o.Name = d.string()
		o.Bricks = d.i32()
		info.Owners = append(info.Owners, o)
	}
	if d.err != nil {
		return nil, fmt.Errorf("decoding header 2: %w", d.err)
	}

	return info, nil
}

// readCompressed reads one length-prefixed section, inflating it if needed.
func readCompressed(r io.Reader) ([]byte, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	size := int32(binary.LittleEndian.Uint32(hdr[0:]))
	packed := int32(binary.LittleEndian.Uint32(hdr[4:]))
	if size < 0 || packed < 0 {
		return nil, fmt.Errorf("negative section length")
	}

	if packed == 0 {
		data := make([]byte, size)
		_, err := io.ReadFull(r, data)
		return data, err
	}

	compressed := make([]byte, packed)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, err
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	data := make([]byte, size)
	_, err = io.ReadFull(zr, data)
	return data, err
}

// decoder reads little-endian primitives and keeps the first error.
type decoder struct {
	r   *bytes.Reader
	err error
}

func (d *decoder) read(n int) []byte {
	if d.err != nil {
		return make([]byte, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		d.err = err
	}
	return buf
}

func (d *decoder) i32() int32 { return int32(binary.LittleEndian.Uint32(d.read(4))) }
func (d *decoder) i64() int64 { return int64(binary.LittleEndian.Uint64(d.read(8))) }

func (d *decoder) uuid() uuid.UUID {
	var id uuid.UUID
	buf := d.read(16)
	for i := 0; i < 16; i += 4 {
		binary.BigEndian.PutUint32(id[i:], binary.LittleEndian.Uint32(buf[i:]))
	}
	return id
}

func (d *decoder) string() string {
	n := d.i32()
	switch {
	case d.err != nil || n == 0:
		return ""
	case n > 0:
		if int64(n) > int64(d.r.Len()) {
			d.err = io.ErrUnexpectedEOF
			return ""
		}
		b := d.read(int(n))
		return string(b[:len(b)-1])
	default:
		count := int(-n)
		if int64(count)*2 > int64(d.r.Len()) {
			d.err = io.ErrUnexpectedEOF
			return ""
		}
		b := d.read(count * 2)
		units := make([]uint16, count-1)
		for i := range units {
			units[i] = binary.LittleEndian.Uint16(b[2*i:])
		}
		return string(utf16.Decode(units))
	}
}

func (d *decoder) strings() []string {
	n := d.i32()
	var out []string
	for ; n > 0 && d.err == nil; n-- {
		out = append(out, d.string())
	}
	return out
}
