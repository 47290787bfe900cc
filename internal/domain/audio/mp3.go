package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// decodeMP3 decodes an MPEG audio stream. go-mp3 always emits 16-bit
// little-endian stereo frames at the stream's native sample rate.
func decodeMP3(data []byte) (*Waveform, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open mp3 stream: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode mp3 frames: %w", err)
	}
	if len(pcm) < 4 {
		return nil, fmt.Errorf("mp3 stream decoded to no audio")
	}

	count := len(pcm) / 2
	interleaved := make([]float64, count)
	for i := 0; i < count; i++ {
		v := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		interleaved[i] = float64(v) / 32768.0
	}

	return &Waveform{
		Samples:    downmix(interleaved, 2),
		SampleRate: dec.SampleRate(),
	}, nil
}
