// Package sampleimage accumulates Monte Carlo color samples per pixel and
// turns them into displayable 8-bit pixels.
package sampleimage

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"spheretrace/sampleimage/headerproto"
	"spheretrace/vmath/vec3"

	"google.golang.org/protobuf/proto"
)

const dataLayoutVersion = 1

// Limits on what ReadSampleImage will allocate for a file's claims.
const (
	maxHeaderLength = 1 << 16
	maxPixels       = 1 << 25
)

// SampleImage holds running color sums and sample counts for every pixel.
// Row 0 is the top of the image.
type SampleImage struct {
	RowSize, ColSize int

	// Seed is the generator seed the samples were drawn with.  Resumed
	// renders reuse it.
	Seed int64

	// Three channels per pixel, row-major.
	ColorSums []float64

	// One count per pixel, row-major.
	ColorCounts []float64
}

type Sample struct {
	ColorSum   vec3.T
	ColorCount float64
}

// Mean is the average color of the sample.  A pixel with no samples has a
// NaN mean.
func (s Sample) Mean() vec3.T {
	return vec3.DivVS(s.ColorSum, s.ColorCount)
}

func (s *SampleImage) Resize(rowSize, colSize int) {
	s.RowSize = rowSize
	s.ColSize = colSize

	s.ColorSums = make([]float64, rowSize*colSize*3)
	s.ColorCounts = make([]float64, rowSize*colSize)
}

func (s *SampleImage) RecordSample(r, c int, v vec3.T) {
	idx := r*s.ColSize + c
	s.ColorSums[3*idx+0] += v[0]
	s.ColorSums[3*idx+1] += v[1]
	s.ColorSums[3*idx+2] += v[2]
	s.ColorCounts[idx] += 1
}

func (s *SampleImage) ReadSample(r, c int) Sample {
	idx := r*s.ColSize + c
	return Sample{
		ColorSum: vec3.T{
			s.ColorSums[3*idx+0],
			s.ColorSums[3*idx+1],
			s.ColorSums[3*idx+2],
		},
		ColorCount: s.ColorCounts[idx],
	}
}

// TotalSamples is the number of samples recorded over the whole image.
func (s *SampleImage) TotalSamples() int64 {
	var total int64
	for _, c := range s.ColorCounts {
		total += int64(c)
	}
	return total
}

// Cut copies the rectangle [rowSrc, rowLim) x [colSrc, colLim) into a new
// image.
func (s *SampleImage) Cut(rowSrc, rowLim, colSrc, colLim int) *SampleImage {
	dst := &SampleImage{Seed: s.Seed}
	dst.Resize(rowLim-rowSrc, colLim-colSrc)

	dstIndex := 0
	for r := rowSrc; r < rowLim; r++ {
		for c := colSrc; c < colLim; c++ {
			srcIndex := r*s.ColSize + c

			copy(dst.ColorSums[3*dstIndex:3*dstIndex+3], s.ColorSums[3*srcIndex:3*srcIndex+3])
			dst.ColorCounts[dstIndex] = s.ColorCounts[srcIndex]

			dstIndex++
		}
	}

	return dst
}

// Paste overwrites the rectangle of s whose top-left corner is (rowSrc,
// colSrc) with the contents of src.
func (s *SampleImage) Paste(src *SampleImage, rowSrc, colSrc int) {
	for r := 0; r < src.RowSize; r++ {
		for c := 0; c < src.ColSize; c++ {
			dstIndex := (r+rowSrc)*s.ColSize + (c + colSrc)
			srcIndex := r*src.ColSize + c

			copy(s.ColorSums[3*dstIndex:3*dstIndex+3], src.ColorSums[3*srcIndex:3*srcIndex+3])
			s.ColorCounts[dstIndex] = src.ColorCounts[srcIndex]
		}
	}
}

// Pixel is an 8-bit RGB triple.
type Pixel [3]uint8

// PixelBuffer is a row-major grid of pixels, top row first.
type PixelBuffer struct {
	RowSize, ColSize int
	Pix              []Pixel
}

func (b *PixelBuffer) At(r, c int) Pixel {
	return b.Pix[r*b.ColSize+c]
}

// ToRGBA converts b for use with the image encoders.
func (b *PixelBuffer) ToRGBA() *image.RGBA {
	im := image.NewRGBA(image.Rect(0, 0, b.ColSize, b.RowSize))
	for r := 0; r < b.RowSize; r++ {
		for c := 0; c < b.ColSize; c++ {
			p := b.At(r, c)
			im.SetRGBA(c, r, color.RGBA{R: p[0], G: p[1], B: p[2], A: 255})
		}
	}
	return im
}

// QuantizeChannel gamma-corrects a linear channel value with gamma 2 and
// scales it to 8 bits.  Values past 1 saturate; NaN and negative values
// become 0.
func QuantizeChannel(v float64) uint8 {
	q := 255.99 * math.Sqrt(v)
	if !(q >= 0) {
		return 0
	}
	if q >= 255 {
		return 255
	}
	return uint8(q)
}

func Quantize(mean vec3.T) Pixel {
	return Pixel{
		QuantizeChannel(mean[0]),
		QuantizeChannel(mean[1]),
		QuantizeChannel(mean[2]),
	}
}

// ToPixels averages and quantizes every pixel of s.
func (s *SampleImage) ToPixels() *PixelBuffer {
	buf := &PixelBuffer{
		RowSize: s.RowSize,
		ColSize: s.ColSize,
		Pix:     make([]Pixel, s.RowSize*s.ColSize),
	}
	for r := 0; r < s.RowSize; r++ {
		for c := 0; c < s.ColSize; c++ {
			buf.Pix[r*s.ColSize+c] = Quantize(s.ReadSample(r, c).Mean())
		}
	}
	return buf
}

func ReadSampleImage(in io.Reader) (*SampleImage, error) {
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}

	if headerLength > maxHeaderLength {
		return nil, fmt.Errorf("header length %d exceeds limit %d; not a sample image?", headerLength, maxHeaderLength)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	hdr := headerproto.NewSampleImageHeader()
	if err := proto.Unmarshal(headerBytes, hdr.Message()); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	if hdr.GetDataLayoutVersion() != dataLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", hdr.GetDataLayoutVersion())
	}

	rows, cols := uint64(hdr.GetRowSize()), uint64(hdr.GetColSize())
	if rows == 0 || cols == 0 || rows*cols > maxPixels {
		return nil, fmt.Errorf("bad image size %dx%d", rows, cols)
	}

	im := &SampleImage{}
	im.Resize(int(rows), int(cols))
	im.Seed = hdr.GetSeed()

	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	if err := binary.Read(zipReader, binary.LittleEndian, im.ColorSums); err != nil {
		return nil, fmt.Errorf("while reading color sums: %w", err)
	}

	if err := binary.Read(zipReader, binary.LittleEndian, im.ColorCounts); err != nil {
		return nil, fmt.Errorf("while reading color counts: %w", err)
	}

	return im, nil
}

func ReadSampleImageFromFile(name string) (*SampleImage, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("while opening file: %w", err)
	}
	defer f.Close()

	return ReadSampleImage(f)
}

func WriteSampleImage(im *SampleImage, w io.Writer) error {
	hdr := headerproto.NewSampleImageHeader()
	hdr.SetRowSize(uint32(im.RowSize))
	hdr.SetColSize(uint32(im.ColSize))
	hdr.SetDataLayoutVersion(dataLayoutVersion)
	hdr.SetSeed(im.Seed)

	hdrBytes, err := proto.Marshal(hdr.Message())
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	zipWriter := zlib.NewWriter(w)

	if err := binary.Write(zipWriter, binary.LittleEndian, im.ColorSums); err != nil {
		return fmt.Errorf("while writing color sums: %w", err)
	}

	if err := binary.Write(zipWriter, binary.LittleEndian, im.ColorCounts); err != nil {
		return fmt.Errorf("while writing color counts: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}

	return nil
}

// WriteSampleImageToFile writes im to name, replacing any existing file.
func WriteSampleImageToFile(im *SampleImage, name string) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("while creating file: %w", err)
	}

	if err := WriteSampleImage(im, f); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("while closing file: %w", err)
	}
	return nil
}
