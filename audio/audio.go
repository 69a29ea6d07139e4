// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
// It plays the role of the format manager handed to every deck: a locator's
// extension selects the decoder.
type Registry struct {
	codecs  map[string]Decoder
	aliases map[string]string

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs:  make(map[string]Decoder),
		aliases: make(map[string]string),
		mtx:     &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

// Alias makes ext resolve to the decoder registered under format.
func (r *Registry) Alias(ext, format string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.aliases[strings.ToLower(ext)] = strings.ToLower(format)
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	format = strings.ToLower(format)
	if target, ok := r.aliases[format]; ok {
		format = target
	}

	d, ok := r.codecs[format]
	return d, ok
}

// Formats lists registered format keys and aliases.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]string, 0, len(r.codecs)+len(r.aliases))
	for k := range r.codecs {
		out = append(out, k)
	}
	for k := range r.aliases {
		out = append(out, k)
	}
	return out
}

// Open resolves locator (a file path or a file:// URI) to a decoded Source.
// Closing the returned Source also closes the underlying file.
func (r *Registry) Open(locator string) (Source, error) {
	path, err := LocatorPath(locator)
	if err != nil {
		return nil, err
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	dec, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%q: %w", ext, ErrUnknownFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return &fileSource{Source: src, f: f}, nil
}

// LocatorPath turns a file path or file:// URI into a filesystem path.
func LocatorPath(locator string) (string, error) {
	if !strings.Contains(locator, "://") {
		return locator, nil
	}

	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("%w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("scheme %q: %w", u.Scheme, ErrUnsupportedLocator)
	}
	return u.Path, nil
}

type fileSource struct {
	Source
	f *os.File
}

func (s *fileSource) Frames() int64 {
	if fc, ok := s.Source.(FrameCounter); ok {
		return fc.Frames()
	}
	return 0
}

func (s *fileSource) Close() error {
	srcErr := s.Source.Close()
	fErr := s.f.Close()
	if srcErr != nil {
		return fmt.Errorf("%w", srcErr)
	}
	if fErr != nil {
		return fmt.Errorf("%w", fErr)
	}
	return nil
}
