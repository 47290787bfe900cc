package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	platformerrors "hypernasality-server-go/internal/platform/errors"
)

// strategy is one attempt at parsing an audio container.
type strategy struct {
	name   string
	decode func([]byte) (*Waveform, error)
}

// Decoder tries an ordered list of decode strategies and stops at the first
// success. The filename extension only reorders the list; every strategy is
// still attempted before giving up.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode produces a mono waveform from an uploaded byte stream.
func (d *Decoder) Decode(data []byte, filename string) (*Waveform, error) {
	if len(data) == 0 {
		return nil, platformerrors.New(platformerrors.KindDecode,
			"audio decode", "empty audio payload")
	}

	var failures []string
	for _, s := range d.strategies(filename) {
		w, err := s.decode(data)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", s.name, err))
			continue
		}
		if err := w.Validate(); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", s.name, err))
			continue
		}
		return w, nil
	}

	return nil, platformerrors.New(platformerrors.KindDecode, "audio decode",
		fmt.Sprintf("no decode strategy could parse %q: %s",
			filename, strings.Join(failures, "; ")))
}

func (d *Decoder) strategies(filename string) []strategy {
	wavStrict := strategy{"wav", decodeWAVStrict}
	mp3Dec := strategy{"mp3", decodeMP3}
	wavPermissive := strategy{"wav-permissive", decodeWAVPermissive}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".mp3" {
		return []strategy{mp3Dec, wavStrict, wavPermissive}
	}
	return []strategy{wavStrict, mp3Dec, wavPermissive}
}
