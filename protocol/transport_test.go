package protocol

import "testing"

// TestShrinkBufferThreshold exercises the Connection Core's buffer
// discipline: a scratch buffer that grew past maxSize is replaced by one
// capped back to maxSize, and the shrink is counted; a buffer at or below
// the threshold is left alone.
func TestShrinkBufferThreshold(t *testing.T) {
	tr := &Transport{maxSize: 1024}
	tr.buf.b = make([]byte, 0, 2048)

	tr.shrinkBuffer()

	if cap(tr.buf.b) != 1024 {
		t.Fatalf("shrinkBuffer: cap got %d want %d", cap(tr.buf.b), 1024)
	}
	if tr.BufferShrinks() != 1 {
		t.Fatalf("BufferShrinks: got %d want 1", tr.BufferShrinks())
	}
}

func TestShrinkBufferNoopBelowThreshold(t *testing.T) {
	tr := &Transport{maxSize: 1024}
	tr.buf.b = make([]byte, 0, 512)

	tr.shrinkBuffer()

	if cap(tr.buf.b) != 512 {
		t.Fatalf("shrinkBuffer: cap got %d want unchanged 512", cap(tr.buf.b))
	}
	if tr.BufferShrinks() != 0 {
		t.Fatalf("BufferShrinks: got %d want 0", tr.BufferShrinks())
	}
}

func TestShrinkBufferDisabledWhenMaxSizeZero(t *testing.T) {
	tr := &Transport{maxSize: 0}
	tr.buf.b = make([]byte, 0, 4096)

	tr.shrinkBuffer()

	if cap(tr.buf.b) != 4096 {
		t.Fatalf("shrinkBuffer with maxSize=0: cap got %d want unchanged 4096", cap(tr.buf.b))
	}
}

func TestPlainBufferResetPreservesCapacity(t *testing.T) {
	var p plainBuffer
	p.Write([]byte("hello"))
	cap0 := cap(p.b)
	p.reset()
	if len(p.b) != 0 {
		t.Fatalf("reset: len got %d want 0", len(p.b))
	}
	if cap(p.b) != cap0 {
		t.Fatalf("reset: cap got %d want unchanged %d", cap(p.b), cap0)
	}
	p.Write([]byte("world"))
	if string(p.Bytes()) != "world" {
		t.Fatalf("Bytes after reset+write: got %q want %q", p.Bytes(), "world")
	}
}
