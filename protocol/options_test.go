package protocol

import (
	"bytes"
	"testing"
)

func TestOptionsRoundtrip(t *testing.T) {
	want := options{
		1: optInt(42),
		2: optBigint(1 << 40),
		3: optDouble(3.5),
		4: optBool(true),
		5: optString("hello"),
		6: optBytes([]byte{0x01, 0x02, 0x03}),
	}
	var buf bytes.Buffer
	e := newEncoder(&buf)
	encodeOptions(e, want)
	if buf.Len() != optionsEncodedSize(want) {
		t.Fatalf("optionsEncodedSize: got %d, encodeOptions wrote %d", optionsEncodedSize(want), buf.Len())
	}
	d := newDecoder(&buf)
	got := decodeOptions(d, int32(len(want)))
	if len(got) != len(want) {
		t.Fatalf("decodeOptions: got %d entries want %d", len(got), len(want))
	}
	for id, v := range want {
		gv, ok := got[id]
		if !ok {
			t.Fatalf("decodeOptions: missing id %d", id)
		}
		if gv.Kind != v.Kind {
			t.Fatalf("id %d: kind got %v want %v", id, gv.Kind, v.Kind)
		}
		switch v.Kind {
		case ovkInt:
			if gv.Int != v.Int {
				t.Fatalf("id %d: got %d want %d", id, gv.Int, v.Int)
			}
		case ovkBigint:
			if gv.Bigint != v.Bigint {
				t.Fatalf("id %d: got %d want %d", id, gv.Bigint, v.Bigint)
			}
		case ovkDouble:
			if gv.Double != v.Double {
				t.Fatalf("id %d: got %v want %v", id, gv.Double, v.Double)
			}
		case ovkBoolean:
			if gv.Boolean != v.Boolean {
				t.Fatalf("id %d: got %v want %v", id, gv.Boolean, v.Boolean)
			}
		case ovkString:
			if gv.String != v.String {
				t.Fatalf("id %d: got %q want %q", id, gv.String, v.String)
			}
		case ovkBytes:
			if !bytes.Equal(gv.Bytes, v.Bytes) {
				t.Fatalf("id %d: got %x want %x", id, gv.Bytes, v.Bytes)
			}
		}
	}
}

func TestOptionsGetters(t *testing.T) {
	opts := options{1: optInt(7), 2: optString("s"), 3: optBool(true), 4: optBytes([]byte{1})}
	if n, ok := opts.getInt(1); !ok || n != 7 {
		t.Fatalf("getInt: got (%d,%v) want (7,true)", n, ok)
	}
	if s, ok := opts.getString(2); !ok || s != "s" {
		t.Fatalf("getString: got (%q,%v) want (s,true)", s, ok)
	}
	if b, ok := opts.getBool(3); !ok || !b {
		t.Fatalf("getBool: got (%v,%v) want (true,true)", b, ok)
	}
	if _, ok := opts.getInt(2); ok {
		t.Fatalf("getInt on a string entry: expected ok=false")
	}
	if _, err := opts.mustGetString(99, "missing thing"); err == nil {
		t.Fatalf("mustGetString on missing id: expected error, got nil")
	}
}

// TestCommandInfoPartEncoding exercises the o_command_info wire part built
// on the generic options codec: line number and module name travel as
// ciLineNumber/ciModuleName entries, decodable the same way any other
// options-map part (ConnectOptions, ClientInfo, ...) is.
func TestCommandInfoPartEncoding(t *testing.T) {
	p := newPartCommandInfo(42, "myproc")
	if p.kind() != pkCommandInfo {
		t.Fatalf("kind: got %v want %v", p.kind(), pkCommandInfo)
	}
	var buf bytes.Buffer
	e := newEncoder(&buf)
	p.encode(e)
	if buf.Len() != p.size() {
		t.Fatalf("size(): got %d, encode wrote %d", p.size(), buf.Len())
	}
	d := newDecoder(&buf)
	got := decodeOptions(d, int32(len(p.opts)))
	line, ok := got.getInt(int8(ciLineNumber))
	if !ok || line != 42 {
		t.Fatalf("ciLineNumber: got (%d,%v) want (42,true)", line, ok)
	}
	module, ok := got.getString(int8(ciModuleName))
	if !ok || module != "myproc" {
		t.Fatalf("ciModuleName: got (%q,%v) want (myproc,true)", module, ok)
	}
}
