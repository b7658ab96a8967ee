package imagegrid

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

// TGA image type constants.
const (
	tgaTypeUncompressed = 2  // Uncompressed true-color
	tgaTypeRLE          = 10 // RLE compressed true-color
)

var errTGATruncated = errors.New("TGA data truncated")

func init() {
	// TGA has no magic number; the empty pattern matches only when every
	// other registered format has been ruled out.
	image.RegisterFormat("tga", "", decodeTGAReader, decodeTGAConfig)
}

func decodeTGAReader(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeTGA(data)
}

func decodeTGAConfig(r io.Reader) (image.Config, error) {
	var hdr [18]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return image.Config{}, errTGATruncated
	}
	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      int(hdr[12]) | int(hdr[13])<<8,
		Height:     int(hdr[14]) | int(hdr[15])<<8,
	}, nil
}

// DecodeTGA decodes an uncompressed (type 2) or RLE (type 10) true-color TGA
// image with 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < 18 {
		return nil, errTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != tgaTypeUncompressed && imageType != tgaTypeRLE {
		return nil, fmt.Errorf("unsupported TGA type %d (only uncompressed/RLE true-color supported)", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		pix:         data[offset:],
		bytesPP:     bpp / 8,
		width:       width,
		height:      height,
		topToBottom: topToBottom,
	}

	if imageType == tgaTypeUncompressed {
		if len(d.pix) < width*height*d.bytesPP {
			return nil, errTGATruncated
		}
		for d.n < width*height {
			d.put(d.next())
		}
		return d.img, nil
	}

	if err := d.decodeRLE(); err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img         *image.RGBA
	pix         []byte
	pos         int // read offset into pix
	n           int // pixels written
	bytesPP     int
	width       int
	height      int
	topToBottom bool
}

// next reads one BGR(A) pixel.
func (d *tgaDecoder) next() color.RGBA {
	p := d.pix[d.pos:]
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bytesPP == 4 {
		c.A = p[3]
	}
	d.pos += d.bytesPP
	return c
}

func (d *tgaDecoder) put(c color.RGBA) {
	x := d.n % d.width
	y := d.n / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetRGBA(x, y, c)
	d.n++
}

func (d *tgaDecoder) decodeRLE() error {
	total := d.width * d.height
	for d.n < total {
		if d.pos >= len(d.pix) {
			return errTGATruncated
		}
		packet := d.pix[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if d.pos+d.bytesPP > len(d.pix) {
				return errTGATruncated
			}
			c := d.next()
			for i := 0; i < count && d.n < total; i++ {
				d.put(c)
			}
			continue
		}

		for i := 0; i < count && d.n < total; i++ {
			if d.pos+d.bytesPP > len(d.pix) {
				return errTGATruncated
			}
			d.put(d.next())
		}
	}
	return nil
}
