package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	platformerrors "hypernasality-server-go/internal/platform/errors"
)

// buildWAV assembles a 16-bit PCM RIFF/WAVE file from interleaved samples.
func buildWAV(t *testing.T, sampleRate, channels int, interleaved []int16) []byte {
	t.Helper()
	var body bytes.Buffer
	for _, s := range interleaved {
		if err := binary.Write(&body, binary.LittleEndian, s); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	dataSize := body.Len()
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func TestDecode_MonoWAV(t *testing.T) {
	data := buildWAV(t, 16000, 1, []int16{0, 16384, -16384, 32767})

	w, err := NewDecoder().Decode(data, "vowel_a.wav")
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if w.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", w.SampleRate)
	}
	if len(w.Samples) != 4 {
		t.Fatalf("sample count = %d, want 4", len(w.Samples))
	}
	if math.Abs(w.Samples[1]-0.5) > 1e-4 {
		t.Errorf("sample[1] = %f, want 0.5", w.Samples[1])
	}
	if math.Abs(w.Samples[2]+0.5) > 1e-4 {
		t.Errorf("sample[2] = %f, want -0.5", w.Samples[2])
	}
}

func TestDecode_StereoAveragesToMono(t *testing.T) {
	// L=0.5, R=-0.5 per frame must average to 0
	data := buildWAV(t, 44100, 2, []int16{16384, -16384, 16384, -16384})

	w, err := NewDecoder().Decode(data, "stereo.wav")
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(w.Samples) != 2 {
		t.Fatalf("frame count = %d, want 2", len(w.Samples))
	}
	for i, s := range w.Samples {
		if math.Abs(s) > 1e-4 {
			t.Errorf("frame %d = %f, want 0 (arithmetic mean of L/R)", i, s)
		}
	}
}

func TestDecode_FallsBackToPermissiveReader(t *testing.T) {
	data := buildWAV(t, 16000, 1, []int16{100, 200, 300, 400})
	// corrupt the data chunk size so the strict reader rejects the file
	binary.LittleEndian.PutUint32(data[40:44], 0xFFFFFF)

	w, err := NewDecoder().Decode(data, "broken.wav")
	if err != nil {
		t.Fatalf("permissive fallback should decode, got error: %v", err)
	}
	if len(w.Samples) != 4 {
		t.Errorf("sample count = %d, want 4", len(w.Samples))
	}
	if w.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", w.SampleRate)
	}
}

func TestDecode_CorruptStreamFails(t *testing.T) {
	garbage := bytes.Repeat([]byte{0x13, 0x37, 0x00, 0x42}, 64)

	_, err := NewDecoder().Decode(garbage, "upload.wav")
	if err == nil {
		t.Fatal("Decode() should fail on garbage input")
	}
	if !platformerrors.IsKind(err, platformerrors.KindDecode) {
		t.Errorf("expected a decode-kind error, got %v", err)
	}
}

func TestDecode_EmptyPayloadFails(t *testing.T) {
	_, err := NewDecoder().Decode(nil, "empty.wav")
	if !platformerrors.IsKind(err, platformerrors.KindDecode) {
		t.Errorf("expected a decode-kind error, got %v", err)
	}
}

func TestDownmix_SingleChannelPassthrough(t *testing.T) {
	in := []float64{0.1, 0.2, 0.3}
	out := downmix(in, 1)
	if &out[0] != &in[0] {
		t.Error("mono input should pass through without copying")
	}
}
