package protocol

import (
	"bytes"
	"math/big"
	"testing"
)

func roundtripValue(t *testing.T, tc typeCode, scale int, nullable bool, v any) any {
	t.Helper()
	var buf bytes.Buffer
	e := newEncoder(&buf)
	if err := encodeValue(e, tc, scale, nullable, v); err != nil {
		t.Fatalf("encodeValue(%s, %v): %v", tc.typeName(), v, err)
	}
	n, err := emitSize(tc, scale, nullable, v)
	if err != nil {
		t.Fatalf("emitSize(%s, %v): %v", tc.typeName(), v, err)
	}
	if n != buf.Len() {
		t.Fatalf("emitSize(%s, %v): got %d, encodeValue wrote %d", tc.typeName(), v, n, buf.Len())
	}
	d := newDecoder(&buf)
	got, err := decodeValue(d, tc, scale, nullable, 0)
	if err != nil {
		t.Fatalf("decodeValue(%s): %v", tc.typeName(), err)
	}
	return got
}

func TestValueRoundtripScalars(t *testing.T) {
	tests := []struct {
		tc typeCode
		v  any
	}{
		{tcTinyint, uint8(42)},
		{tcSmallint, int16(-1234)},
		{tcInteger, int32(123456789)},
		{tcBigint, int64(-9_000_000_000)},
		{tcReal, float32(3.5)},
		{tcDouble, float64(2.718281828)},
	}
	for _, test := range tests {
		got := roundtripValue(t, test.tc, 0, true, test.v)
		if got != test.v {
			t.Fatalf("%s: got %#v want %#v", test.tc.typeName(), got, test.v)
		}
	}
}

// TestDecodeBooleanWireValues exercises decodeValue's BOOLEAN wire format
// directly: a single byte, 0=false, 1=NULL, 2=true, as decoded from a row
// whose column descriptor already names BOOLEAN (no separate leading type
// byte for this type, unlike the scalar numeric types above).
func TestDecodeBooleanWireValues(t *testing.T) {
	tests := []struct {
		b    byte
		want any
	}{
		{0, false},
		{2, true},
	}
	for _, test := range tests {
		d := newDecoder(bytes.NewReader([]byte{test.b}))
		got, err := decodeValue(d, tcBoolean, 0, true, 0)
		if err != nil {
			t.Fatalf("decodeValue(BOOLEAN, %d): %v", test.b, err)
		}
		if got != test.want {
			t.Fatalf("decodeValue(BOOLEAN, %d): got %#v want %#v", test.b, got, test.want)
		}
	}
	d := newDecoder(bytes.NewReader([]byte{1}))
	got, err := decodeValue(d, tcBoolean, 0, true, 0)
	if err != nil || got != nil {
		t.Fatalf("decodeValue(BOOLEAN, NULL): got (%#v,%v) want (nil,nil)", got, err)
	}
}

func TestValueRoundtripString(t *testing.T) {
	got := roundtripValue(t, tcVarchar, 0, true, "hello, world")
	s, ok := got.(string)
	if !ok || s != "hello, world" {
		t.Fatalf("got %#v want %q", got, "hello, world")
	}
}

func TestValueRoundtripBinary(t *testing.T) {
	want := []byte{0x01, 0x02, 0xff, 0x00}
	got := roundtripValue(t, tcVarbinary, 0, true, want)
	b, ok := got.([]byte)
	if !ok || !bytes.Equal(b, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestValueRoundtripDecimal(t *testing.T) {
	want := Decimal{Mantissa: big.NewInt(12345), Exp: -2}
	got := roundtripValue(t, tcDecimal, 0, true, want)
	dec, ok := got.(Decimal)
	if !ok {
		t.Fatalf("got %#v, want Decimal", got)
	}
	if dec.Mantissa.Cmp(want.Mantissa) != 0 || dec.Exp != want.Exp {
		t.Fatalf("got %+v want %+v", dec, want)
	}
}

func TestValueRoundtripFixed(t *testing.T) {
	want := Decimal{Mantissa: big.NewInt(987), Exp: -2}
	scale := 2
	got := roundtripValue(t, tcFixed8, scale, true, want)
	dec, ok := got.(Decimal)
	if !ok {
		t.Fatalf("got %#v, want Decimal", got)
	}
	if dec.Mantissa.Cmp(want.Mantissa) != 0 {
		t.Fatalf("got mantissa %v want %v", dec.Mantissa, want.Mantissa)
	}
}

func TestValueRoundtripNull(t *testing.T) {
	tests := []typeCode{tcSmallint, tcInteger, tcBigint, tcReal, tcDouble, tcVarchar, tcVarbinary, tcDecimal}
	for _, tc := range tests {
		got := roundtripValue(t, tc, 0, true, nil)
		if got != nil {
			t.Fatalf("%s: NULL round trip got %#v, want nil", tc.typeName(), got)
		}
	}
}

func TestEncodeNullRejectedWhenNotNullable(t *testing.T) {
	var buf bytes.Buffer
	e := newEncoder(&buf)
	if err := encodeValue(e, tcInteger, 0, false, nil); err == nil {
		t.Fatalf("encodeValue(NULL, nullable=false): expected error, got nil")
	}
}

func TestIsValidCESU8(t *testing.T) {
	if !isValidCESU8([]byte("plain ascii")) {
		t.Fatalf("plain ascii rejected as invalid CESU-8")
	}
	if isValidCESU8([]byte{0xff, 0xfe}) {
		t.Fatalf("invalid byte sequence accepted as valid CESU-8")
	}
}
