package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	payloads := [][]byte{
		[]byte("ping"),
		{},
		[]byte{0x00, 0xFF, 0x10},
		bytes.Repeat([]byte("x"), 4096),
	}
	for _, in := range payloads {
		encoded, err := Encode(in, cfg)
		if err != nil {
			t.Fatalf("encode %d bytes: %v", len(in), err)
		}
		if len(encoded) != HeaderLen+len(in) {
			t.Fatalf("encoded length got=%d want=%d", len(encoded), HeaderLen+len(in))
		}
		out, n, err := Decode(encoded, cfg)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if n != len(encoded) {
			t.Fatalf("consumed got=%d want=%d", n, len(encoded))
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("payload mismatch: got=%q want=%q", out, in)
		}
	}
}

func TestEncodeNilPayload(t *testing.T) {
	if _, err := Encode(nil, DefaultConfig()); !errors.Is(err, ErrNilPayload) {
		t.Fatalf("expected ErrNilPayload, got %v", err)
	}
}

func TestEncodePayloadSizeBoundary(t *testing.T) {
	cfg := Config{Version: ProtocolVersion, MaxPayloadBytes: 64}
	if _, err := Encode(make([]byte, 64), cfg); err != nil {
		t.Fatalf("payload at limit should encode: %v", err)
	}
	if _, err := Encode(make([]byte, 65), cfg); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestDecodeNeedsMoreBytes(t *testing.T) {
	cfg := DefaultConfig()
	encoded, err := Encode([]byte("hello"), cfg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for cut := 0; cut < len(encoded); cut++ {
		out, n, err := Decode(encoded[:cut], cfg)
		if err != nil {
			t.Fatalf("cut=%d unexpected error: %v", cut, err)
		}
		if n != 0 || out != nil {
			t.Fatalf("cut=%d expected need-more signal, got n=%d payload=%q", cut, n, out)
		}
	}
}

func TestDecodeVersionMismatchConsumesNothing(t *testing.T) {
	cfg := DefaultConfig()
	encoded, err := Encode([]byte("ping"), cfg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	binary.BigEndian.PutUint16(encoded[0:2], ProtocolVersion+1)
	out, n, err := Decode(encoded, cfg)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
	if n != 0 || out != nil {
		t.Fatalf("bad frame must consume nothing: n=%d payload=%q", n, out)
	}
}

func TestDecodeCorruptLength(t *testing.T) {
	cfg := Config{Version: ProtocolVersion, MaxPayloadBytes: 16}
	buf := make([]byte, HeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], cfg.Version)
	binary.BigEndian.PutUint32(buf[2:6], 17)
	_, n, err := Decode(buf, cfg)
	if !errors.Is(err, ErrCorruptFrame) {
		t.Fatalf("expected ErrCorruptFrame, got %v", err)
	}
	if n != 0 {
		t.Fatalf("corrupt frame must consume nothing, consumed %d", n)
	}
}

func TestDecodeSecondFrameLeftInBuffer(t *testing.T) {
	cfg := DefaultConfig()
	first, _ := Encode([]byte("one"), cfg)
	second, _ := Encode([]byte("two"), cfg)
	buf := append(append([]byte{}, first...), second...)

	out, n, err := Decode(buf, cfg)
	if err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if string(out) != "one" || n != len(first) {
		t.Fatalf("unexpected first frame: payload=%q n=%d", out, n)
	}
	out, n, err = Decode(buf[n:], cfg)
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if string(out) != "two" || n != len(second) {
		t.Fatalf("unexpected second frame: payload=%q n=%d", out, n)
	}
}

func TestReadFrameCleanEOF(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil), DefaultConfig())
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF on empty stream, got %v", err)
	}
}

func TestReadFrameTruncatedMidFrame(t *testing.T) {
	cfg := DefaultConfig()
	encoded, _ := Encode([]byte("truncated"), cfg)
	_, err := ReadFrame(bytes.NewReader(encoded[:HeaderLen+3]), cfg)
	if !errors.Is(err, ErrTruncatedFrame) {
		t.Fatalf("expected ErrTruncatedFrame, got %v", err)
	}

	_, err = ReadFrame(bytes.NewReader(encoded[:3]), cfg)
	if !errors.Is(err, ErrTruncatedFrame) {
		t.Fatalf("expected ErrTruncatedFrame on short header, got %v", err)
	}
}

func TestWriteFrameReadFrameRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("ping"), cfg); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	out, err := ReadFrame(&buf, cfg)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if string(out) != "ping" {
		t.Fatalf("payload mismatch: %q", out)
	}
}
