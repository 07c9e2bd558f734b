package protocol

import (
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/hdbgo/hdb/cesu8"
)

// decodeValue parses one HdbValue of wire type tc (scale only matters for
// fixed-point decimals, elemTC only for ARRAY) from d. nullable controls
// whether the high-bit-set (or type-specific) NULL encoding is legal.
func decodeValue(d *decoder, tc typeCode, scale int, nullable bool, elemTC typeCode) (any, error) {
	b := d.byte()
	isNull := b&tcNullMask != 0 || (tc == tcSecondtime && typeCode(b) == tcSecondtimeNull)
	if isNull {
		if !nullable {
			return nil, fmt.Errorf("protocol: NULL value for non-nullable column of type %s", tc.typeName())
		}
		return nil, nil
	}

	switch tc.encTc() {
	case tcTinyint:
		return uint8(d.byte()), nil
	case tcSmallint:
		return d.int16(), nil
	case tcInteger:
		return d.int32(), nil
	case tcBigint:
		return d.int64(), nil
	case tcReal:
		bits := d.uint32()
		if bits == math.MaxUint32 {
			if !nullable {
				return nil, fmt.Errorf("protocol: NULL REAL for non-nullable column")
			}
			return nil, nil
		}
		return math.Float32frombits(bits), nil
	case tcDouble:
		bits := d.uint64()
		if bits == math.MaxUint64 {
			if !nullable {
				return nil, fmt.Errorf("protocol: NULL DOUBLE for non-nullable column")
			}
			return nil, nil
		}
		return math.Float64frombits(bits), nil
	case tcBoolean:
		switch b {
		case 0:
			return false, nil
		case 1:
			if !nullable {
				return nil, fmt.Errorf("protocol: NULL BOOLEAN for non-nullable column")
			}
			return nil, nil
		case 2:
			return true, nil
		default:
			return nil, fmt.Errorf("protocol: invalid BOOLEAN wire value %d", b)
		}
	case tcDecimal:
		m, exp, err := d.decimal()
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, nil
		}
		return Decimal{Mantissa: m, Exp: exp}, nil
	case tcFixed8:
		return decodeFixed(d, 8, scale, nullable)
	case tcFixed12:
		return decodeFixed(d, 12, scale, nullable)
	case tcFixed16:
		return decodeFixed(d, 16, scale, nullable)
	case tcLongdate:
		v := d.int64()
		if v == temporalNullSentinel {
			if !nullable {
				return nil, fmt.Errorf("protocol: NULL LONGDATE for non-nullable column")
			}
			return nil, nil
		}
		return LongDate(v), nil
	case tcSeconddate:
		v := d.int64()
		if v == temporalNullSentinel {
			if !nullable {
				return nil, fmt.Errorf("protocol: NULL SECONDDATE for non-nullable column")
			}
			return nil, nil
		}
		return SecondDate(v), nil
	case tcDaydate:
		v := d.int32()
		if int64(v) == temporalNullSentinel {
			if !nullable {
				return nil, fmt.Errorf("protocol: NULL DAYDATE for non-nullable column")
			}
			return nil, nil
		}
		return DayDate(v), nil
	case tcSecondtime:
		v := d.int32()
		return SecondTime(v), nil
	case tcChar, tcVarchar, tcNChar, tcNVarchar, tcString, tcNString, tcShortText, tcAlphanum:
		return decodeVarString(d)
	case tcBinary, tcVarbinary:
		n, ok := readLength(d)
		if !ok {
			if !nullable {
				return nil, fmt.Errorf("protocol: NULL binary for non-nullable column")
			}
			return nil, nil
		}
		return d.bytes(n), nil
	case tcBLob, tcCLob, tcNCLob, tcText, tcBintext, tcSTPoint, tcSTGeometry:
		return decodeLobLocator(d)
	case tcArray:
		return decodeArray(d, elemTC)
	default:
		return nil, fmt.Errorf("protocol: unsupported type code %d (%s)", tc, tc.typeName())
	}
}

func decodeFixed(d *decoder, size, scale int, nullable bool) (any, error) {
	m := d.fixed(size)
	if d.error() != nil {
		return nil, d.error()
	}
	_ = nullable // fixed-width decimals are only NULL via the leading tcNullMask byte, handled by the caller
	return Decimal{Mantissa: m, Exp: -scale}, nil
}

// decodeVarString reads a length-indicated string and CESU-8-decodes it;
// on invalid CESU-8 it falls back to a DBString carrying the raw bytes
// unchanged, per the length-indicator/CESU-8 testable properties.
func decodeVarString(d *decoder) (any, error) {
	n, ok := readLength(d)
	if !ok {
		return nil, nil
	}
	raw := d.bytes(n)
	if d.error() != nil {
		return nil, d.error()
	}
	if !isValidCESU8(raw) {
		return DBString{Bytes: raw}, nil
	}
	return string(cesu8.ToUTF8(raw)), nil
}

// isValidCESU8 reports whether b decodes cleanly as CESU-8, i.e. without
// DecodeRune ever falling back to the replacement character for a sequence
// that isn't literally the replacement character's own encoding.
func isValidCESU8(b []byte) bool {
	const replacement = '�'
	for len(b) > 0 {
		r, size := cesu8.DecodeRune(b)
		if r == replacement && !(size == 3 && len(b) >= 3 && b[0] == 0xef && b[1] == 0xbf && b[2] == 0xbd) {
			return false
		}
		b = b[size:]
	}
	return true
}

func decodeLobLocator(d *decoder) (any, error) {
	options := d.byte()
	_ = options // data-included / last-data / null flags, see emitLob
	if options&0x01 != 0 { // null flag
		return nil, nil
	}
	charLength := d.int64()
	byteLength := d.int64()
	id := d.uint64()
	n := int32(d.int32())
	var prefix []byte
	if n > 0 {
		prefix = d.bytes(int(n))
	}
	return &LobLocator{
		ID:         id,
		IsLast:     options&0x04 != 0,
		CharLength: charLength,
		ByteLength: byteLength,
		Prefix:     prefix,
	}, nil
}

// decodeArray parses an ARRAY value whose element type is elemTC, as
// declared by the column/parameter descriptor (nested arrays are forbidden
// by the wire format, so elemTC is never itself tcArray). Array elements
// are always nullable regardless of the declaring column's nullability.
func decodeArray(d *decoder, elemTC typeCode) (any, error) {
	n, ok := readLength(d)
	if !ok || n == 0 {
		return Array{ElemTypeCode: elemTC}, nil
	}
	count := int(d.int32())
	elems := make([]any, count)
	for i := 0; i < count; i++ {
		v, err := decodeValue(d, elemTC, 0, true, 0)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return Array{ElemTypeCode: elemTC, Elems: elems}, nil
}

// encodeValue emits one HdbValue for wire type tc given the supplied Go
// value (nil means NULL). For fixed-point decimals the target scale must
// match the column/parameter descriptor, not the value itself.
func encodeValue(e *encoder, tc typeCode, scale int, nullable bool, v any) error {
	if v == nil {
		if !nullable {
			return fmt.Errorf("protocol: cannot encode NULL for non-nullable column of type %s", tc.typeName())
		}
		return encodeNull(e, tc)
	}

	switch tc.encTc() {
	case tcTinyint:
		n, err := toUint8(v)
		if err != nil {
			return err
		}
		e.byte(byte(tcTinyint))
		e.byte(n)
	case tcSmallint:
		n, err := toInt16(v)
		if err != nil {
			return err
		}
		e.byte(byte(tcSmallint))
		e.int16(n)
	case tcInteger:
		n, err := toInt32(v)
		if err != nil {
			return err
		}
		e.byte(byte(tcInteger))
		e.int32(n)
	case tcBigint:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		e.byte(byte(tcBigint))
		e.int64(n)
	case tcReal:
		f, err := toFloat32(v)
		if err != nil {
			return err
		}
		e.byte(byte(tcReal))
		e.float32(f)
	case tcDouble:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		e.byte(byte(tcDouble))
		e.float64(f)
	case tcBoolean:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("protocol: cannot encode %T as BOOLEAN", v)
		}
		e.byte(byte(tcBoolean))
		if b {
			e.byte(2)
		} else {
			e.byte(0)
		}
	case tcDecimal:
		dec, err := toDecimal(v)
		if err != nil {
			return err
		}
		e.byte(byte(tcDecimal))
		e.decimal(dec.Mantissa, dec.Exp)
	case tcFixed8:
		return encodeFixed(e, v, 8, scale, tcFixed8)
	case tcFixed12:
		return encodeFixed(e, v, 12, scale, tcFixed12)
	case tcFixed16:
		return encodeFixed(e, v, 16, scale, tcFixed16)
	case tcLongdate:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		e.byte(byte(tcLongdate))
		e.int64(n)
	case tcSeconddate:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		e.byte(byte(tcSeconddate))
		e.int64(n)
	case tcDaydate:
		n, err := toInt32(v)
		if err != nil {
			return err
		}
		e.byte(byte(tcDaydate))
		e.int32(n)
	case tcSecondtime:
		n, err := toInt32(v)
		if err != nil {
			return err
		}
		e.byte(byte(tcSecondtime))
		e.int32(n)
	case tcChar, tcVarchar, tcNChar, tcNVarchar, tcString, tcNString, tcShortText, tcAlphanum:
		s, err := toString(v)
		if err != nil {
			return err
		}
		e.byte(byte(tc.encTc()))
		writeLength(e, cesu8Size(s))
		e.cesu8String(s)
	case tcBinary, tcVarbinary:
		p, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("protocol: cannot encode %T as binary", v)
		}
		e.byte(byte(tc.encTc()))
		writeLength(e, len(p))
		e.bytes(p)
	case tcBLob, tcCLob, tcNCLob, tcText, tcBintext:
		return encodeLobParameter(e, tc, v)
	default:
		return fmt.Errorf("protocol: unsupported encode type code %d (%s)", tc, tc.typeName())
	}
	return e.error()
}

// lobInlineChunkCap bounds how much of an OutLob's stream is read and sent
// inline with the Execute request's Parameters part before falling back to
// a WRITE_LOB continuation, per the "primitive LOB value" emit path (a
// fixed header plus as much data as fits in one shot).
const lobInlineChunkCap = 1 << 20 // 1 MiB

// encodeLobParameter emits the fixed 9-byte LOB parameter header (options
// byte, 4-byte chunk length, 4-byte position counter starting at 0) followed
// by up to lobInlineChunkCap bytes of v's content. []byte and string values
// always fit in one chunk and are marked data-included + last-data. An
// OutLob reads up to the cap; if its Read has not yet returned io.EOF, the
// chunk is marked data-included but NOT last-data, and the caller is
// expected to continue the transfer via WRITE_LOB using the locator id the
// server assigns in the Execute reply's WriteLobReply part.
func encodeLobParameter(e *encoder, tc typeCode, v any) error {
	switch val := v.(type) {
	case []byte:
		e.byte(byte(tc.encTc()))
		emitLob(e, val, true)
	case string:
		e.byte(byte(tc.encTc()))
		emitLob(e, cesu8FromString(tc, val), true)
	case OutLob:
		buf := make([]byte, lobInlineChunkCap)
		n, err := io.ReadFull(outLobReader{val.Read}, buf)
		isLast := false
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			isLast = true
		} else if err != nil {
			return fmt.Errorf("protocol: reading outbound LOB stream: %w", err)
		}
		e.byte(byte(tc.encTc()))
		emitLob(e, buf[:n], isLast)
	default:
		return fmt.Errorf("protocol: cannot encode %T as %s", v, tc.typeName())
	}
	return nil
}

// outLobReader adapts OutLob's bare Read func to io.Reader so it can be
// driven by io.ReadFull.
type outLobReader struct{ fn func([]byte) (int, error) }

func (r outLobReader) Read(p []byte) (int, error) { return r.fn(p) }

func cesu8FromString(tc typeCode, s string) []byte {
	if tc == tcBLob || tc == tcBintext {
		return []byte(s)
	}
	return cesu8.FromUTF8(s)
}

// emitLob writes the fixed LOB parameter header: options (bit1 data
// included, bit2 last data), a 4-byte chunk length, and a 4-byte position
// counter (always 0 on the first and only inline chunk this driver sends;
// a WRITE_LOB request carries its own append offset).
func emitLob(e *encoder, data []byte, isLast bool) {
	opts := byte(0x02) // data included
	if isLast {
		opts |= 0x04 // last data
	}
	e.byte(opts)
	e.int32(int32(len(data)))
	e.int32(0)
	e.bytes(data)
}

func encodeNull(e *encoder, tc typeCode) error {
	switch tc.encTc() {
	case tcReal:
		e.byte(byte(tcReal))
		e.uint32(math.MaxUint32)
	case tcDouble:
		e.byte(byte(tcDouble))
		e.uint64(math.MaxUint64)
	case tcBoolean:
		e.byte(byte(tcBoolean))
		e.byte(1)
	case tcDecimal:
		e.byte(byte(tcDecimal))
		e.decimalNull()
	case tcLongdate, tcSeconddate:
		e.byte(tc.nullValue())
		e.int64(temporalNullSentinel)
	case tcDaydate, tcSecondtime:
		e.byte(tc.nullValue())
		e.int32(int32(temporalNullSentinel))
	case tcChar, tcVarchar, tcNChar, tcNVarchar, tcString, tcNString, tcShortText, tcAlphanum, tcBinary, tcVarbinary:
		e.byte(tc.nullValue())
		writeLengthNull(e)
	default:
		e.byte(tc.nullValue())
	}
	return e.error()
}

func encodeFixed(e *encoder, v any, size, scale int, tc typeCode) error {
	dec, err := toDecimal(v)
	if err != nil {
		return err
	}
	m := rescale(dec, scale)
	e.byte(byte(tc))
	e.fixed(m, size)
	return e.error()
}

// rescale adjusts mantissa so that the value is expressed at exactly
// 10^-scale (the column/parameter descriptor's scale, not the value's own).
func rescale(dec Decimal, scale int) *big.Int {
	m := new(big.Int).Set(dec.Mantissa)
	shift := scale + dec.Exp
	if shift == 0 {
		return m
	}
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(shift))), nil)
	if shift > 0 {
		m.Mul(m, pow)
	} else {
		m.Quo(m, pow)
	}
	return m
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// emitSize returns the number of bytes encodeValue would write for v
// without writing them, so the part codec can fill in the part header
// length ahead of emission.
func emitSize(tc typeCode, scale int, nullable bool, v any) (int, error) {
	const typeByte = 1
	if v == nil {
		switch tc.encTc() {
		case tcChar, tcVarchar, tcNChar, tcNVarchar, tcString, tcNString, tcShortText, tcAlphanum, tcBinary, tcVarbinary:
			return typeByte + 1, nil
		case tcDecimal:
			return typeByte + decSize, nil
		case tcLongdate, tcSeconddate:
			return typeByte + 8, nil
		case tcDaydate, tcSecondtime:
			return typeByte + 4, nil
		case tcReal, tcDouble, tcBoolean:
			return fixedEmitSize(tc)
		default:
			return typeByte, nil
		}
	}
	switch tc.encTc() {
	case tcChar, tcVarchar, tcNChar, tcNVarchar, tcString, tcNString, tcShortText, tcAlphanum:
		s, err := toString(v)
		if err != nil {
			return 0, err
		}
		n := cesu8Size(s)
		return typeByte + lengthIndicatorSize(n) + n, nil
	case tcBinary, tcVarbinary:
		p, ok := v.([]byte)
		if !ok {
			return 0, fmt.Errorf("protocol: cannot encode %T as binary", v)
		}
		return typeByte + lengthIndicatorSize(len(p)) + len(p), nil
	case tcDecimal:
		return typeByte + decSize, nil
	case tcFixed8:
		return typeByte + 8, nil
	case tcFixed12:
		return typeByte + 12, nil
	case tcFixed16:
		return typeByte + 16, nil
	default:
		return fixedEmitSize(tc)
	}
}

func fixedEmitSize(tc typeCode) (int, error) {
	switch tc.encTc() {
	case tcTinyint:
		return 2, nil
	case tcSmallint:
		return 3, nil
	case tcInteger, tcDaydate, tcSecondtime:
		return 5, nil
	case tcBigint, tcLongdate, tcSeconddate:
		return 9, nil
	case tcReal:
		return 5, nil
	case tcDouble:
		return 9, nil
	case tcBoolean:
		return 2, nil
	default:
		return 0, fmt.Errorf("protocol: unsupported emit-size type code %d (%s)", tc, tc.typeName())
	}
}

func cesu8Size(s string) int { return cesu8.StringSize(s) }
