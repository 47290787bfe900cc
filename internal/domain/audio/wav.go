package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE
)

type wavFormat struct {
	audioFormat   uint16
	channels      int
	sampleRate    int
	bitsPerSample int
}

// decodeWAVStrict parses a well-formed RIFF/WAVE container: a valid header,
// a fmt chunk describing PCM or IEEE-float samples, and a data chunk whose
// declared size fits the buffer.
func decodeWAVStrict(data []byte) (*Waveform, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("file too short for a WAV header (%d bytes)", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("missing RIFF/WAVE magic")
	}

	var format *wavFormat
	var sampleData []byte

	// chunk walk
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			return nil, fmt.Errorf("chunk %q declares %d bytes beyond end of file", chunkID, chunkSize)
		}

		switch chunkID {
		case "fmt ":
			f, err := parseFmtChunk(data[body : body+chunkSize])
			if err != nil {
				return nil, err
			}
			format = f
		case "data":
			sampleData = data[body : body+chunkSize]
		}

		// chunks are word-aligned
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if format == nil {
		return nil, fmt.Errorf("no fmt chunk")
	}
	if sampleData == nil {
		return nil, fmt.Errorf("no data chunk")
	}

	return samplesFromPCM(sampleData, format)
}

// decodeWAVPermissive is the fallback reader for files whose headers lie:
// it scans for the data chunk marker and reads every sample byte to the end
// of the buffer, assuming 16-bit mono at 16 kHz when no fmt chunk parses.
func decodeWAVPermissive(data []byte) (*Waveform, error) {
	format := &wavFormat{
		audioFormat:   formatPCM,
		channels:      1,
		sampleRate:    16000,
		bitsPerSample: 16,
	}
	if idx := bytes.Index(data, []byte("fmt ")); idx >= 0 && idx+24 <= len(data) {
		if f, err := parseFmtChunk(data[idx+8 : idx+24]); err == nil {
			format = f
		}
	}

	idx := bytes.Index(data, []byte("data"))
	if idx < 0 || idx+8 >= len(data) {
		return nil, fmt.Errorf("no data chunk marker found")
	}

	return samplesFromPCM(data[idx+8:], format)
}

func parseFmtChunk(chunk []byte) (*wavFormat, error) {
	if len(chunk) < 16 {
		return nil, fmt.Errorf("fmt chunk too short (%d bytes)", len(chunk))
	}
	f := &wavFormat{
		audioFormat:   binary.LittleEndian.Uint16(chunk[0:2]),
		channels:      int(binary.LittleEndian.Uint16(chunk[2:4])),
		sampleRate:    int(binary.LittleEndian.Uint32(chunk[4:8])),
		bitsPerSample: int(binary.LittleEndian.Uint16(chunk[14:16])),
	}
	if f.audioFormat == formatExtensible {
		// WAVE_FORMAT_EXTENSIBLE carries the real format in the subformat
		// GUID; the first two GUID bytes match the classic format codes.
		if len(chunk) >= 26 {
			f.audioFormat = binary.LittleEndian.Uint16(chunk[24:26])
		}
	}
	if f.audioFormat != formatPCM && f.audioFormat != formatIEEEFloat {
		return nil, fmt.Errorf("unsupported audio format %d", f.audioFormat)
	}
	if f.channels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", f.channels)
	}
	if f.sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", f.sampleRate)
	}
	return f, nil
}

func samplesFromPCM(raw []byte, f *wavFormat) (*Waveform, error) {
	bytesPerSample := f.bitsPerSample / 8
	if bytesPerSample <= 0 {
		return nil, fmt.Errorf("invalid bits per sample %d", f.bitsPerSample)
	}
	count := len(raw) / bytesPerSample
	if count == 0 {
		return nil, fmt.Errorf("data chunk holds no samples")
	}

	interleaved := make([]float64, count)
	switch {
	case f.audioFormat == formatPCM && f.bitsPerSample == 16:
		for i := 0; i < count; i++ {
			v := int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
			interleaved[i] = float64(v) / 32768.0
		}
	case f.audioFormat == formatPCM && f.bitsPerSample == 24:
		for i := 0; i < count; i++ {
			b := raw[i*3 : i*3+3]
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xFFFFFF) // sign extend
			}
			interleaved[i] = float64(v) / 8388608.0
		}
	case f.audioFormat == formatPCM && f.bitsPerSample == 32:
		for i := 0; i < count; i++ {
			v := int32(binary.LittleEndian.Uint32(raw[i*4 : i*4+4]))
			interleaved[i] = float64(v) / 2147483648.0
		}
	case f.audioFormat == formatIEEEFloat && f.bitsPerSample == 32:
		for i := 0; i < count; i++ {
			bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
			interleaved[i] = float64(math.Float32frombits(bits))
		}
	case f.audioFormat == formatIEEEFloat && f.bitsPerSample == 64:
		for i := 0; i < count; i++ {
			bits := binary.LittleEndian.Uint64(raw[i*8 : i*8+8])
			interleaved[i] = math.Float64frombits(bits)
		}
	default:
		return nil, fmt.Errorf("unsupported sample layout: format %d, %d bits",
			f.audioFormat, f.bitsPerSample)
	}

	return &Waveform{
		Samples:    downmix(interleaved, f.channels),
		SampleRate: f.sampleRate,
	}, nil
}
