package protocol

import (
	"bytes"
	"testing"
)

func TestClientChallengeSize(t *testing.T) {
	b, err := clientChallenge()
	if err != nil {
		t.Fatalf("clientChallenge: %v", err)
	}
	if len(b) != clientChallengeSize {
		t.Fatalf("clientChallenge: got %d bytes, want %d", len(b), clientChallengeSize)
	}
}

func TestXorBytes(t *testing.T) {
	a := []byte{0xff, 0x0f, 0x00}
	b := []byte{0x0f, 0xff, 0xff}
	got := xorBytes(a, b)
	want := []byte{0xf0, 0xf0, 0xff}
	if !bytes.Equal(got, want) {
		t.Fatalf("xorBytes: got %x want %x", got, want)
	}
	// XOR is its own inverse: xorBytes(xorBytes(a,b), b) == a.
	if back := xorBytes(got, b); !bytes.Equal(back, a) {
		t.Fatalf("xorBytes round trip: got %x want %x", back, a)
	}
}

func TestScramSHA256ClientProofDeterministic(t *testing.T) {
	password := []byte("s3cret")
	salt := []byte("0123456789abcdef")
	serverKey := []byte("fedcba9876543210")
	challenge := []byte("client-challenge-bytes")

	cp1, sp1 := scramSHA256ClientProof(password, salt, serverKey, challenge)
	cp2, sp2 := scramSHA256ClientProof(password, salt, serverKey, challenge)
	if !bytes.Equal(cp1, cp2) || !bytes.Equal(sp1, sp2) {
		t.Fatalf("scramSHA256ClientProof: not deterministic for identical inputs")
	}
	if len(cp1) != clientProofSize {
		t.Fatalf("clientProof size: got %d want %d", len(cp1), clientProofSize)
	}
	if len(sp1) != clientProofSize {
		t.Fatalf("serverProof size: got %d want %d", len(sp1), clientProofSize)
	}

	// A different password must change the proof.
	cp3, _ := scramSHA256ClientProof([]byte("different"), salt, serverKey, challenge)
	if bytes.Equal(cp1, cp3) {
		t.Fatalf("scramSHA256ClientProof: proof unchanged for a different password")
	}
}

func TestScramPBKDF2IterationFloorRejected(t *testing.T) {
	_, _, err := scramPBKDF2SHA256ClientProof([]byte("pw"), []byte("salt"), []byte("sn"), []byte("cn"), minPBKDF2Iterations-1)
	if err == nil {
		t.Fatalf("scramPBKDF2SHA256ClientProof: expected error for iteration count below the minimum, got nil")
	}
}

func TestScramPBKDF2SHA256ClientProof(t *testing.T) {
	password := []byte("s3cret")
	salt := []byte("0123456789abcdef")
	serverNonce := []byte("server-nonce")
	clientNonce := []byte("client-nonce")

	cp1, sp1, err := scramPBKDF2SHA256ClientProof(password, salt, serverNonce, clientNonce, minPBKDF2Iterations)
	if err != nil {
		t.Fatalf("scramPBKDF2SHA256ClientProof: %v", err)
	}
	cp2, sp2, err := scramPBKDF2SHA256ClientProof(password, salt, serverNonce, clientNonce, minPBKDF2Iterations)
	if err != nil {
		t.Fatalf("scramPBKDF2SHA256ClientProof: %v", err)
	}
	if !bytes.Equal(cp1, cp2) || !bytes.Equal(sp1, sp2) {
		t.Fatalf("scramPBKDF2SHA256ClientProof: not deterministic for identical inputs")
	}
	if len(cp1) != clientProofSize || len(sp1) != clientProofSize {
		t.Fatalf("proof sizes: got (%d,%d) want (%d,%d)", len(cp1), len(sp1), clientProofSize, clientProofSize)
	}

	cp3, _, err := scramPBKDF2SHA256ClientProof(password, salt, serverNonce, clientNonce, minPBKDF2Iterations+1)
	if err != nil {
		t.Fatalf("scramPBKDF2SHA256ClientProof: %v", err)
	}
	if bytes.Equal(cp1, cp3) {
		t.Fatalf("scramPBKDF2SHA256ClientProof: proof unchanged when iteration count changes")
	}
}
