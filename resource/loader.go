package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// Payload is the loaded form of a resource. Texture, model, shader, and
// font loads populate Bytes; audio loads populate Audio and Format
// instead and leave Bytes nil.
type Payload struct {
	Bytes  []byte
	Audio  *beep.Buffer
	Format beep.Format
}

// Load reads the file for a load command variant. Texture, model,
// shader, and font loads deliver raw bytes; decoding those formats is
// the renderer's concern. Audio is decoded eagerly so playback never
// touches the filesystem.
func Load(kind CommandType, path string) (*Payload, error) {
	switch kind {
	case LoadTexture, LoadModel, LoadShader, LoadFont:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", kind, path, err)
		}
		return &Payload{Bytes: data}, nil

	case LoadAudio:
		return loadAudio(path)

	default:
		return nil, fmt.Errorf("%s is not a load command", kind)
	}
}

// loadAudio decodes a WAV file into a memory buffer.
func loadAudio(path string) (*Payload, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".wav" {
		return nil, fmt.Errorf("LoadAudio %q: unsupported format %q", path, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadAudio %q: %w", path, err)
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("LoadAudio %q: decode: %w", path, err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)

	return &Payload{Audio: buf, Format: format}, nil
}
