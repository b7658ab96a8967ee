// Package brs writes brick lists as Brickadia save files.
package brs

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zlib"

	"github.com/Faultbox/heightmap2brs/pkg/brick"
)

// Version is the save format revision written by this package.
const Version = 8

// GameVersion is the engine build recorded in saves.
const GameVersion = 3642

const magic = "BRS"

// Save metadata defaults.
const (
	DefaultMap         = "Plate"
	DefaultDescription = "Save generated from heightmap file"
	DefaultOwnerName   = "Generator"
	DefaultMaterial    = "BMC_Plastic"
)

// DefaultOwnerID is used when the configured owner id is not a valid UUID.
var DefaultOwnerID = uuid.MustParse("a1b16aca-9627-4a16-a160-67fa9adbb7b6")

// Errors reported by the writer.
var (
	ErrInvalidMagic = errors.New("invalid BRS magic")
	ErrBadOwner     = errors.New("brick owner index out of range")
)

// Direction and rotation of every brick the optimizer emits.
const (
	directionZPositive = 4
	rotationDeg0       = 0
)

// ueEpochOffset is the number of 100ns ticks between 0001-01-01 and the Unix
// epoch.
const ueEpochOffset = 621355968000000000

// User identifies a save author or brick owner.
type User struct {
	ID   uuid.UUID
	Name string
}

// Save is everything written to a save file.
type Save struct {
	Map         string
	Author      User
	Host        User
	Description string
	SaveTime    time.Time
	BrickAssets []string
	Materials   []string
	// Owners lists brick owners; Brick.Owner is an index into it.
	Owners []User
	Bricks []brick.Brick
}

// ParseOwnerID parses id as a UUID. ok is false when id was invalid and the
// default owner id was substituted.
func ParseOwnerID(id string) (u uuid.UUID, ok bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return DefaultOwnerID, false
	}
	return u, true
}

// NewSave wraps bricks in the metadata of a generated save owned by a single
// user.
func NewSave(bricks []brick.Brick, ownerID uuid.UUID, ownerName string) *Save {
	owner := User{ID: ownerID, Name: ownerName}
	return &Save{
		Map:         DefaultMap,
		Author:      owner,
		Host:        owner,
		Description: DefaultDescription,
		SaveTime:    time.Now(),
		BrickAssets: brick.AssetNames(),
		Materials:   []string{DefaultMaterial},
		Owners:      []User{owner},
		Bricks:      bricks,
	}
}

// Write encodes the save to w.
func Write(w io.Writer, s *Save) error {
	for i, b := range s.Bricks {
		if int(b.Owner) >= len(s.Owners) {
			return fmt.Errorf("%w: brick %d has owner %d of %d", ErrBadOwner, i, b.Owner, len(s.Owners))
		}
	}

	bw := bufio.NewWriter(w)
	var hdr [9]byte
	copy(hdr[:], magic)
	binary.LittleEndian.PutUint16(hdr[3:], Version)
	binary.LittleEndian.PutUint32(hdr[5:], GameVersion)
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}

	sections := []struct {
		name string
		data []byte
	}{
		{"header 1", s.header1()},
		{"header 2", s.header2()},
	}
	for _, sec := range sections {
		if err := writeCompressed(bw, sec.data); err != nil {
			return fmt.Errorf("writing %s: %w", sec.name, err)
		}
	}

	// No preview image.
	if err := bw.WriteByte(0); err != nil {
		return err
	}
	if err := writeCompressed(bw, s.brickData()); err != nil {
		return fmt.Errorf("writing bricks: %w", err)
	}
	// Empty component table.
	if err := writeCompressed(bw, make([]byte, 4)); err != nil {
		return fmt.Errorf("writing components: %w", err)
	}
	return bw.Flush()
}

func (s *Save) header1() []byte {
	var b bytes.Buffer
	writeString(&b, s.Map)
	writeString(&b, s.Author.Name)
	writeString(&b, s.Description)
	writeUUID(&b, s.Author.ID)
	writeString(&b, s.Host.Name)
	writeUUID(&b, s.Host.ID)
	writeI64(&b, s.SaveTime.UnixNano()/100+ueEpochOffset)
	writeI32(&b, int32(len(s.Bricks)))
	return b.Bytes()
}

func (s *Save) header2() []byte {
	var b bytes.Buffer
	writeI32(&b, 0) // mods
	writeStrings(&b, s.BrickAssets)
	writeI32(&b, 0) // color palette; bricks use custom colors
	writeStrings(&b, s.Materials)

	counts := make([]int32, len(s.Owners))
	for _, br := range s.Bricks {
		counts[br.Owner]++
	}
	writeI32(&b, int32(len(s.Owners)))
	for i, o := range s.Owners {
		writeUUID(&b, o.ID)
		writeString(&b, o.Name)
		writeI32(&b, counts[i])
	}
	return b.Bytes()
}

func (s *Save) brickData() []byte {
	var w bitWriter
	assets := uint32(len(s.BrickAssets))
	materials := uint32(len(s.Materials))
	for _, b := range s.Bricks {
		w.align()
		w.uint(b.Type.AssetIndex(), assets)
		w.bit(true) // procedural size
		for _, v := range b.Size {
			w.uintPacked(v)
		}
		for _, v := range b.Position {
			w.intPacked(v)
		}
		w.uint(directionZPositive<<2|rotationDeg0, 24)
		w.bit(b.Collision)
		w.bit(true) // visible
		w.uint(0, materials)
		w.bit(true) // custom color
		writeColor(&w, b.Color)
		// Owner 0 is the public owner, so listed owners start at 1.
		w.uintPacked(b.Owner + 1)
	}
	return w.Bytes()
}

// writeColor stores a custom color as BGRA. Bricks are always opaque.
func writeColor(w *bitWriter, c color.RGBA) {
	w.bytes(c.B, c.G, c.R, 255)
}

// writeCompressed writes a section as uncompressed length, compressed length
// and payload. Payloads that do not shrink are stored with a compressed
// length of zero.
func writeCompressed(w io.Writer, data []byte) error {
	var z bytes.Buffer
	zw, err := zlib.NewWriterLevel(&z, zlib.BestCompression)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(data)))
	payload := z.Bytes()
	if len(payload) >= len(data) {
		payload = data
	} else {
		binary.LittleEndian.PutUint32(hdr[4:], uint32(len(payload)))
	}
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

func writeI32(b *bytes.Buffer, v int32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	b.Write(buf[:])
}

func writeI64(b *bytes.Buffer, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	b.Write(buf[:])
}

// writeString writes a length-prefixed, null-terminated string. ASCII is
// stored as bytes; anything else as UTF-16 with a negative length.
func writeString(b *bytes.Buffer, s string) {
	if isASCII(s) {
		writeI32(b, int32(len(s)+1))
		b.WriteString(s)
		b.WriteByte(0)
		return
	}
	units := utf16.Encode([]rune(s))
	writeI32(b, -int32(len(units)+1))
	for _, u := range units {
		b.WriteByte(byte(u))
		b.WriteByte(byte(u >> 8))
	}
	b.Write([]byte{0, 0})
}

func writeStrings(b *bytes.Buffer, list []string) {
	writeI32(b, int32(len(list)))
	for _, s := range list {
		writeString(b, s)
	}
}

// writeUUID stores the id as four little-endian words of its big-endian
// 32-bit groups.
func writeUUID(b *bytes.Buffer, id uuid.UUID) {
	for i := 0; i < 16; i += 4 {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], binary.BigEndian.Uint32(id[i:i+4]))
		b.Write(buf[:])
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
