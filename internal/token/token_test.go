package token_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"github.com/wpup/conauth/internal/token"
)

func TestNew_UsesAllBytesFromReader(t *testing.T) {
	src := bytes.Repeat([]byte{0xAB}, 32)
	encoded, err := token.New(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := token.Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(raw, src) {
		t.Errorf("decoded bytes differ from source")
	}
}

func TestNew_ShortReader_Errors(t *testing.T) {
	_, err := token.New(bytes.NewReader([]byte{1, 2, 3}))
	if err == nil {
		t.Fatal("want error for short random source")
	}
}

func TestEncode_IsURLSafe(t *testing.T) {
	for i := 0; i < 100; i++ {
		encoded, err := token.New(rand.Reader)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.ContainsAny(encoded, "+/=") {
			t.Fatalf("token %q contains URL-unsafe characters", encoded)
		}
	}
}

func TestRoundTrip_RandomTokens(t *testing.T) {
	for i := 0; i < 100; i++ {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			t.Fatalf("rand: %v", err)
		}
		got, err := token.Decode(token.Encode(raw))
		if err != nil {
			t.Fatalf("round trip %d: %v", i, err)
		}
		if !bytes.Equal(got, raw) {
			t.Fatalf("round trip %d: bytes changed", i)
		}
	}
}

func TestDecode_Empty_Errors(t *testing.T) {
	if _, err := token.Decode(""); err == nil {
		t.Error("want error for empty token")
	}
}

func TestDecode_Garbage_Errors(t *testing.T) {
	if _, err := token.Decode("%%not-base64%%"); err == nil {
		t.Error("want error for malformed token")
	}
}

func TestHash_StableAndDistinct(t *testing.T) {
	a := token.Hash("first")
	if a != token.Hash("first") {
		t.Error("hash of same input differs")
	}
	if a == token.Hash("second") {
		t.Error("hash of different inputs collides")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestNew_ErrorFromReader_Propagates(t *testing.T) {
	readErr := errors.New("entropy exhausted")
	_, err := token.New(failReader{readErr})
	if !errors.Is(err, readErr) {
		t.Errorf("want wrapped reader error, got %v", err)
	}
}

type failReader struct{ err error }

func (r failReader) Read([]byte) (int, error) { return 0, r.err }
