package render

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"github.com/sixy6e/wavetrace/sensor"
)

// tev operation bytes, per the IPC protocol util/preview_tev.cpp speaks:
// a four-byte little-endian packet length (self-inclusive) followed by
// a one-byte operation tag and an operation-specific payload.
//
// The payload layouts below (image creation announces
// name/resolution/channel names, update carries one channel's
// sub-rectangle as float32 row data) are a plausible minimal rendering
// of the publicly documented tev wire format, since preview_tev.cpp's
// own framing helper was never retrieved into original_source/.
const (
	tevOpCreateImage = 4
	tevOpUpdateImage = 3
)

// TevPreviewer is a TCP client that streams partial-film updates to an
// external tev instance over the tev IPC protocol.
type TevPreviewer struct {
	mu      sync.Mutex
	conn    net.Conn
	created map[string]bool
}

// DialTev connects to a running tev instance at addr ("host:port").
func DialTev(addr string) (*TevPreviewer, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TevPreviewer{conn: conn, created: make(map[string]bool)}, nil
}

// Close releases the underlying TCP connection.
func (t *TevPreviewer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.Close()
}

func (t *TevPreviewer) send(op byte, payload []byte) error {
	var buf bytes.Buffer
	length := uint32(4 + 1 + len(payload))
	if err := binary.Write(&buf, binary.LittleEndian, length); err != nil {
		return err
	}
	buf.WriteByte(op)
	buf.Write(payload)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.conn.Write(buf.Bytes())
	return err
}

func cString(s string) []byte {
	return append([]byte(s), 0)
}

// createImage announces a new RGBA image of the given resolution to
// tev, sent once per sensor the first time Update is called for it.
func (t *TevPreviewer) createImage(name string, w, h int) error {
	var buf bytes.Buffer
	buf.WriteByte(1) // grabFocus
	buf.Write(cString(name))
	binary.Write(&buf, binary.LittleEndian, int32(w))
	binary.Write(&buf, binary.LittleEndian, int32(h))
	binary.Write(&buf, binary.LittleEndian, int32(4)) // R,G,B,A
	for _, ch := range []string{"R", "G", "B", "A"} {
		buf.Write(cString(ch))
	}
	return t.send(tevOpCreateImage, buf.Bytes())
}

// updateChannel streams one channel's full-resolution row-major data.
func (t *TevPreviewer) updateChannel(name, channel string, w, h int, data []float32) error {
	var buf bytes.Buffer
	buf.WriteByte(0) // grabFocus
	buf.Write(cString(name))
	buf.Write(cString(channel))
	binary.Write(&buf, binary.LittleEndian, int32(0)) // x
	binary.Write(&buf, binary.LittleEndian, int32(0)) // y
	binary.Write(&buf, binary.LittleEndian, int32(w))
	binary.Write(&buf, binary.LittleEndian, int32(h))
	for _, v := range data {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return t.send(tevOpUpdateImage, buf.Bytes())
}

// Update pushes the current state of storage to tev under the given
// sensor name, announcing the image on first use. frac (fractional
// samples-per-element completed) is accepted for API symmetry with the
// rest of the previewer update path but is not itself transmitted —
// tev has no notion of partial-sample fraction, only pixel data.
func (t *TevPreviewer) Update(name string, storage *sensor.FilmStorage, frac float64) error {
	w, h := int(storage.W), int(storage.H)
	if w <= 0 || h <= 0 {
		return fmt.Errorf("render: tev update for %q: empty film", name)
	}

	t.mu.Lock()
	alreadyCreated := t.created[name]
	t.mu.Unlock()
	if !alreadyCreated {
		if err := t.createImage(name, w, h); err != nil {
			return err
		}
		t.mu.Lock()
		t.created[name] = true
		t.mu.Unlock()
	}

	r := make([]float32, w*h)
	g := make([]float32, w*h)
	b := make([]float32, w*h)
	a := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := storage.Mean(sensor.Element{X: uint32(x), Y: uint32(y)})
			i := y*w + x
			r[i] = float32(s.I)
			g[i] = float32(s.I)
			b[i] = float32(s.I)
			a[i] = 1
		}
	}
	for ch, data := range map[string][]float32{"R": r, "G": g, "B": b, "A": a} {
		if err := t.updateChannel(name, ch, w, h, data); err != nil {
			return err
		}
	}
	return nil
}
