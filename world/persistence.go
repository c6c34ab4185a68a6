package world

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
	"github.com/rs/zerolog/log"
)

// Store is the persistence capability consumed by the chunk manager.
// Implementations must never corrupt core state: a failed load falls back to
// the generator, a failed save reports an error and the chunk stays dirty.
type Store interface {
	// LoadChunk returns the stored chunk, or a freshly generated one on
	// miss or corruption.
	LoadChunk(cx, cy int, gen Generator) *Chunk
	// SaveChunk writes a chunk atomically.
	SaveChunk(c *Chunk) error
	// LoadMetadata returns stored world metadata, or defaults.
	LoadMetadata() *Metadata
	// SaveMetadata writes world metadata.
	SaveMetadata(meta *Metadata) error
}

// Chunk file layout: little-endian, lz4-compressed.
const (
	chunkMagic   uint32 = 0x47524348 // "GRCH"
	chunkVersion uint16 = 1
)

// FileStore persists chunks and metadata under a world directory:
// <dir>/chunks/chunk_<cx>_<cy>.bin plus <dir>/world.yaml.
type FileStore struct {
	dir string
}

// NewFileStore creates the world directory structure if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, "chunks"), 0o755); err != nil {
		return nil, fmt.Errorf("creating world directories: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the world directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) chunkPath(cx, cy int) string {
	return filepath.Join(s.dir, "chunks", fmt.Sprintf("chunk_%d_%d.bin", cx, cy))
}

// SaveChunk encodes, compresses, and atomically writes a chunk.
func (s *FileStore) SaveChunk(c *Chunk) error {
	raw, err := EncodeChunk(c)
	if err != nil {
		return fmt.Errorf("encoding chunk (%d, %d): %w", c.X, c.Y, err)
	}

	var compressed bytes.Buffer
	zw := lz4.NewWriter(&compressed)
	if _, err := zw.Write(raw); err != nil {
		return fmt.Errorf("compressing chunk (%d, %d): %w", c.X, c.Y, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing chunk (%d, %d): %w", c.X, c.Y, err)
	}

	path := s.chunkPath(c.X, c.Y)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing chunk temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming chunk file: %w", err)
	}

	log.Debug().Int("cx", c.X).Int("cy", c.Y).Int("bytes", compressed.Len()).Msg("saved chunk")
	return nil
}

// LoadChunk reads a chunk from disk, falling back to the generator on miss
// or on any decode failure.
func (s *FileStore) LoadChunk(cx, cy int, gen Generator) *Chunk {
	path := s.chunkPath(cx, cy)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Int("cx", cx).Int("cy", cy).Msg("failed to read chunk, regenerating")
		}
		return gen.GenerateChunk(cx, cy)
	}

	c, err := decodeCompressedChunk(data)
	if err != nil {
		log.Warn().Err(err).Int("cx", cx).Int("cy", cy).Msg("corrupt chunk on disk, regenerating")
		return gen.GenerateChunk(cx, cy)
	}
	if c.X != cx || c.Y != cy {
		log.Warn().Int("cx", cx).Int("cy", cy).Msg("chunk file holds wrong coordinates, regenerating")
		return gen.GenerateChunk(cx, cy)
	}
	return c
}

func decodeCompressedChunk(data []byte) (*Chunk, error) {
	zr := lz4.NewReader(bytes.NewReader(data))
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing chunk: %w", err)
	}
	return DecodeChunk(raw)
}

// EncodeChunk serializes a chunk into the stable binary layout. Runtime-only
// state (dirty tracking, updated/falling flags, simulation-active) is not
// recorded.
func EncodeChunk(c *Chunk) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := func(v any) error { return binary.Write(buf, binary.LittleEndian, v) }

	if err := w(chunkMagic); err != nil {
		return nil, err
	}
	if err := w(chunkVersion); err != nil {
		return nil, err
	}
	if err := w(int32(c.X)); err != nil {
		return nil, err
	}
	if err := w(int32(c.Y)); err != nil {
		return nil, err
	}

	for i := range c.pixels {
		if err := w(c.pixels[i].Material); err != nil {
			return nil, err
		}
	}
	for i := range c.pixels {
		if err := w(c.pixels[i].Flags &^ runtimeFlags); err != nil {
			return nil, err
		}
	}
	if err := w(c.Temperature); err != nil {
		return nil, err
	}
	if err := w(c.Pressure); err != nil {
		return nil, err
	}

	// Light can be regenerated, but storing it avoids a dark first frame.
	if err := w(uint8(1)); err != nil {
		return nil, err
	}
	if err := w(c.Light); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeChunk parses the stable binary layout. Loaded chunks come back
// clean, light-dirty, and simulation-inactive.
func DecodeChunk(raw []byte) (*Chunk, error) {
	r := bytes.NewReader(raw)
	rd := func(v any) error { return binary.Read(r, binary.LittleEndian, v) }

	var magic uint32
	if err := rd(&magic); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if magic != chunkMagic {
		return nil, fmt.Errorf("bad magic %#x", magic)
	}
	var version uint16
	if err := rd(&version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != chunkVersion {
		return nil, fmt.Errorf("unsupported chunk version %d", version)
	}

	var cx, cy int32
	if err := rd(&cx); err != nil {
		return nil, err
	}
	if err := rd(&cy); err != nil {
		return nil, err
	}

	c := NewChunk(int(cx), int(cy))
	for i := range c.pixels {
		if err := rd(&c.pixels[i].Material); err != nil {
			return nil, fmt.Errorf("reading pixels: %w", err)
		}
	}
	for i := range c.pixels {
		if err := rd(&c.pixels[i].Flags); err != nil {
			return nil, fmt.Errorf("reading flags: %w", err)
		}
		c.pixels[i].Flags &^= runtimeFlags
	}
	if err := rd(&c.Temperature); err != nil {
		return nil, fmt.Errorf("reading temperature: %w", err)
	}
	if err := rd(&c.Pressure); err != nil {
		return nil, fmt.Errorf("reading pressure: %w", err)
	}

	var hasLight uint8
	if err := rd(&hasLight); err != nil {
		return nil, fmt.Errorf("reading light marker: %w", err)
	}
	if hasLight == 1 {
		if err := rd(&c.Light); err != nil {
			return nil, fmt.Errorf("reading light: %w", err)
		}
	}

	c.Dirty = false
	c.LightDirty = true
	c.SimulationActive = false
	c.ClearDirtyRect()
	return c, nil
}
