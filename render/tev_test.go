package render

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/sixy6e/wavetrace/sensor"
)

func readPacket(t *testing.T, conn net.Conn) (op byte, payload []byte) {
	t.Helper()
	var lenBuf [4]byte
	if _, err := conn.Read(lenBuf[:]); err != nil {
		t.Fatalf("read length prefix: %v", err)
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])

	rest := make([]byte, length-4)
	read := 0
	for read < len(rest) {
		n, err := conn.Read(rest[read:])
		if err != nil {
			t.Fatalf("read payload: %v", err)
		}
		read += n
	}
	return rest[0], rest[1:]
}

func TestTevUpdateFramesCreateThenUpdatePackets(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	tev := &TevPreviewer{conn: client, created: make(map[string]bool)}
	storage := sensor.NewFilmStorage(2, 2, 1)

	done := make(chan error, 1)
	go func() { done <- tev.Update("cam", storage, 0.5) }()

	op, payload := readPacket(t, server)
	if op != tevOpCreateImage {
		t.Fatalf("first packet op = %d, want tevOpCreateImage (%d)", op, tevOpCreateImage)
	}
	if payload[0] != 1 {
		t.Fatalf("createImage grabFocus byte = %d, want 1", payload[0])
	}

	// four channel-update packets follow (R,G,B,A), in unspecified order.
	for i := 0; i < 4; i++ {
		op, _ := readPacket(t, server)
		if op != tevOpUpdateImage {
			t.Fatalf("packet %d op = %d, want tevOpUpdateImage (%d)", i, op, tevOpUpdateImage)
		}
	}

	if err := <-done; err != nil {
		t.Fatalf("Update: %v", err)
	}
}

func TestTevUpdateRejectsEmptyFilm(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	tev := &TevPreviewer{conn: client, created: make(map[string]bool)}
	empty := sensor.NewFilmStorage(0, 0, 0)
	if err := tev.Update("cam", empty, 0); err == nil {
		t.Fatal("expected an error for a zero-resolution film")
	}
}
