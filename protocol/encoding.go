package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/hdbgo/hdb/cesu8"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decoder reads hdb wire primitives off an io.Reader. Like the codec this
// driver is modeled on, read errors are sticky: once set, every subsequent
// primitive read is a no-op that returns the zero value, so call sites can
// decode a whole part body and check the error once at the end.
type decoder struct {
	rd  io.Reader
	err error
	buf [32]byte
	cnt int
}

func newDecoder(rd io.Reader) *decoder { return &decoder{rd: rd} }

func (d *decoder) error() error { return d.err }

func (d *decoder) resetError() error {
	err := d.err
	d.err = nil
	return err
}

func (d *decoder) cntRead() int { return d.cnt }

func (d *decoder) readFull(p []byte) {
	if d.err != nil {
		return
	}
	n, err := io.ReadFull(d.rd, p)
	d.cnt += n
	if err != nil {
		d.err = err
	}
}

func (d *decoder) skip(n int) {
	var tmp [64]byte
	for n > 0 {
		m := n
		if m > len(tmp) {
			m = len(tmp)
		}
		d.readFull(tmp[:m])
		if d.err != nil {
			return
		}
		n -= m
	}
}

func (d *decoder) byte() byte {
	d.readFull(d.buf[:1])
	return d.buf[0]
}

func (d *decoder) bool() bool { return d.byte() != 0 }

func (d *decoder) int8() int8 { return int8(d.byte()) }

func (d *decoder) int16() int16 {
	d.readFull(d.buf[:2])
	return int16(binary.LittleEndian.Uint16(d.buf[:2]))
}

func (d *decoder) uint16() uint16 {
	d.readFull(d.buf[:2])
	return binary.LittleEndian.Uint16(d.buf[:2])
}

func (d *decoder) uint16BigEndian() uint16 {
	d.readFull(d.buf[:2])
	return binary.BigEndian.Uint16(d.buf[:2])
}

func (d *decoder) int32() int32 {
	d.readFull(d.buf[:4])
	return int32(binary.LittleEndian.Uint32(d.buf[:4]))
}

func (d *decoder) uint32() uint32 {
	d.readFull(d.buf[:4])
	return binary.LittleEndian.Uint32(d.buf[:4])
}

func (d *decoder) uint32BigEndian() uint32 {
	d.readFull(d.buf[:4])
	return binary.BigEndian.Uint32(d.buf[:4])
}

func (d *decoder) int64() int64 {
	d.readFull(d.buf[:8])
	return int64(binary.LittleEndian.Uint64(d.buf[:8]))
}

func (d *decoder) uint64() uint64 {
	d.readFull(d.buf[:8])
	return binary.LittleEndian.Uint64(d.buf[:8])
}

func (d *decoder) float32() float32 {
	d.readFull(d.buf[:4])
	return math.Float32frombits(binary.LittleEndian.Uint32(d.buf[:4]))
}

func (d *decoder) float64() float64 {
	d.readFull(d.buf[:8])
	return math.Float64frombits(binary.LittleEndian.Uint64(d.buf[:8]))
}

func (d *decoder) bytes(n int) []byte {
	p := make([]byte, n)
	d.readFull(p)
	return p
}

// cesu8String reads n CESU-8-encoded bytes and returns them re-encoded as
// UTF-8. It does not report invalid CESU-8 to the caller; value.go's
// string decoding checks validity itself before choosing DBSTRING.
func (d *decoder) cesu8String(n int) (string, error) {
	p := d.bytes(n)
	if d.err != nil {
		return "", d.err
	}
	return validatedUTF8(cesu8.ToUTF8(p)), nil
}

// validatedUTF8 passes p through golang.org/x/text's UTF-8 validator.
// cesu8.ToUTF8 already turns malformed input (such as a broken surrogate
// pair from a corrupt wire payload) into the replacement character; if p
// still fails validation, it is returned unchanged.
func validatedUTF8(p []byte) string {
	out, _, err := transform.Bytes(unicode.UTF8Validator, p)
	if err != nil {
		return string(p)
	}
	return string(out)
}

const (
	decSize = 16
	// dec128Bias is the exponent bias of HANA's 128-bit decimal wire format.
	dec128Bias = 6176
	wordSizeBits = 32 << (^big.Word(0) >> 63) // bits per big.Word (32 or 64)
	wordBytes    = wordSizeBits / 8
)

var bigOne = big.NewInt(1)

// decimal reads the 16-byte DECIMAL wire format and returns mantissa and
// decimal exponent (value = mantissa * 10^exp), or (nil, 0, nil) for NULL.
func (d *decoder) decimal() (*big.Int, int, error) {
	bs := make([]byte, decSize)
	d.readFull(bs)
	if d.err != nil {
		return nil, 0, d.err
	}
	if bs[15]&0x70 == 0x70 { // NULL
		return nil, 0, nil
	}
	if bs[15]&0x60 == 0x60 {
		return nil, 0, fmt.Errorf("protocol: unsupported decimal format %v", bs)
	}
	neg := bs[15]&0x80 != 0
	exp := int((((uint16(bs[15])<<8)|uint16(bs[14]))<<1)>>2) - dec128Bias
	bs[14] &= 0x01 // keep mantissa bit only
	return fixedToBigInt(bs, neg, false), exp, nil
}

// fixed reads a size-byte two's-complement fixed-point mantissa.
func (d *decoder) fixed(size int) *big.Int {
	bs := make([]byte, size)
	d.readFull(bs)
	if d.err != nil {
		return nil
	}
	neg := bs[size-1]&0x80 != 0
	return fixedToBigInt(bs, neg, true)
}

func fixedToBigInt(bs []byte, neg, twosComplement bool) *big.Int {
	msb := len(bs) - 1
	for msb > 0 && bs[msb] == 0 {
		msb--
	}
	numWords := msb/wordBytes + 1
	ws := make([]big.Word, numWords)
	for i := 0; i <= msb; i++ {
		b := bs[i]
		if neg && twosComplement {
			b = ^b
		}
		ws[i/wordBytes] |= big.Word(b) << uint(i%wordBytes*8)
	}
	m := new(big.Int).SetBits(ws)
	if neg {
		if twosComplement {
			m.Add(m, bigOne)
		}
		m.Neg(m)
	}
	return m
}

// encoder writes hdb wire primitives to an io.Writer.
type encoder struct {
	wr  io.Writer
	err error
	buf [32]byte
}

func newEncoder(wr io.Writer) *encoder { return &encoder{wr: wr} }

func (e *encoder) error() error { return e.err }

func (e *encoder) writeFull(p []byte) {
	if e.err != nil {
		return
	}
	if _, err := e.wr.Write(p); err != nil {
		e.err = err
	}
}

func (e *encoder) byte(b byte) { e.buf[0] = b; e.writeFull(e.buf[:1]) }

func (e *encoder) bool(b bool) {
	if b {
		e.byte(1)
	} else {
		e.byte(0)
	}
}

func (e *encoder) int8(v int8) { e.byte(byte(v)) }

func (e *encoder) int16(v int16) {
	binary.LittleEndian.PutUint16(e.buf[:2], uint16(v))
	e.writeFull(e.buf[:2])
}

func (e *encoder) uint16BigEndian(v uint16) {
	binary.BigEndian.PutUint16(e.buf[:2], v)
	e.writeFull(e.buf[:2])
}

func (e *encoder) int32(v int32) {
	binary.LittleEndian.PutUint32(e.buf[:4], uint32(v))
	e.writeFull(e.buf[:4])
}

func (e *encoder) uint32(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[:4], v)
	e.writeFull(e.buf[:4])
}

func (e *encoder) uint32BigEndian(v uint32) {
	binary.BigEndian.PutUint32(e.buf[:4], v)
	e.writeFull(e.buf[:4])
}

func (e *encoder) int64(v int64) {
	binary.LittleEndian.PutUint64(e.buf[:8], uint64(v))
	e.writeFull(e.buf[:8])
}

func (e *encoder) uint64(v uint64) {
	binary.LittleEndian.PutUint64(e.buf[:8], v)
	e.writeFull(e.buf[:8])
}

func (e *encoder) float32(v float32) {
	binary.LittleEndian.PutUint32(e.buf[:4], math.Float32bits(v))
	e.writeFull(e.buf[:4])
}

func (e *encoder) float64(v float64) {
	binary.LittleEndian.PutUint64(e.buf[:8], math.Float64bits(v))
	e.writeFull(e.buf[:8])
}

func (e *encoder) bytes(p []byte) { e.writeFull(p) }

func (e *encoder) zeroes(n int) {
	var z [16]byte
	for n > 0 {
		m := n
		if m > len(z) {
			m = len(z)
		}
		e.writeFull(z[:m])
		n -= m
	}
}

func (e *encoder) cesu8String(s string) { e.bytes(cesu8.FromUTF8(s)) }

// fixed writes mantissa m as a size-byte two's-complement little-endian
// fixed-point value.
func (e *encoder) fixed(m *big.Int, size int) {
	bs := make([]byte, size)
	if m.Sign() < 0 {
		m = new(big.Int).Add(new(big.Int).Lsh(bigOne, uint(size*8)), m)
	}
	bigIntToFixed(m, bs)
	e.writeFull(bs)
}

// decimal writes mantissa m and decimal exponent exp in the 16-byte DECIMAL
// wire format.
func (e *encoder) decimal(m *big.Int, exp int) {
	bs := make([]byte, decSize)
	neg := m.Sign() < 0
	abs := new(big.Int).Abs(m)
	bigIntToFixed(abs, bs)
	biasedExp := uint16(exp + dec128Bias)
	bs[14] |= byte(biasedExp<<1) & 0xFE
	bs[15] = byte(biasedExp >> 7)
	if neg {
		bs[15] |= 0x80
	}
	e.writeFull(bs)
}

func (e *encoder) decimalNull() {
	bs := make([]byte, decSize)
	bs[15] = 0x70
	e.writeFull(bs)
}

func bigIntToFixed(m *big.Int, bs []byte) {
	words := m.Bits()
	for i := 0; i < len(bs); i++ {
		wi, bi := i/wordBytes, uint(i%wordBytes)
		if wi >= len(words) {
			break
		}
		bs[i] = byte(words[wi] >> (bi * 8))
	}
}
