// Package loader reads program images into simulator memory.
//
// The text format is a list of whitespace-separated 32-bit hex words, one instruction per
// token, with an optional 0x prefix. Lines may carry a trailing '#' comment. Word i is
// stored at base+4*i through the bus, so words outside every memory region are dropped
// like any other unmapped write. An image with no words loads nothing.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Urethramancer/mips32/cpu"
	"github.com/sirupsen/logrus"
)

// Parse reads a hex text image into words.
func Parse(r io.Reader) ([]uint32, error) {
	var words []uint32
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}

		for _, tok := range strings.Fields(text) {
			w, err := parseWord(tok)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			words = append(words, w)
		}
	}
	err := sc.Err()
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	return words, nil
}

func parseWord(tok string) (uint32, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid word %q", tok)
	}
	return uint32(v), nil
}

// Load parses a hex text image from r and writes it to bus at base.
// It returns the number of words in the image, including any dropped as unmapped.
func Load(r io.Reader, bus *cpu.Bus, base uint32) (int, error) {
	return load(r, bus, base, nil)
}

func load(r io.Reader, bus *cpu.Bus, base uint32, log logrus.FieldLogger) (int, error) {
	words, err := Parse(r)
	if err != nil {
		return 0, err
	}
	return Write(bus, base, words, log), nil
}

// LoadBinary writes a raw little-endian image to bus at base. A trailing partial word is
// zero-padded.
func LoadBinary(r io.Reader, bus *cpu.Bus, base uint32) (int, error) {
	return loadBinary(r, bus, base, nil)
}

func loadBinary(r io.Reader, bus *cpu.Bus, base uint32, log logrus.FieldLogger) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read image: %w", err)
	}
	return Write(bus, base, cpu.BytesToWords(data), log), nil
}

// Write stores words at base+4*i with bus.Write32 and returns len(words). Words that fall
// outside every region are dropped by the bus and logged at Warn. A nil log discards.
func Write(bus *cpu.Bus, base uint32, words []uint32, log logrus.FieldLogger) int {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	dropped := 0
	for i, word := range words {
		addr := base + uint32(i)*4
		entry := log.WithFields(logrus.Fields{
			"addr": fmt.Sprintf("0x%08x", addr),
			"word": fmt.Sprintf("0x%08x", word),
		})
		if bus.Mapped(addr) {
			entry.Debug("write")
		} else {
			dropped++
			entry.Warn("unmapped write dropped")
		}
		bus.Write32(addr, word)
	}

	log.WithFields(logrus.Fields{
		"words":   len(words),
		"dropped": dropped,
		"base":    fmt.Sprintf("0x%08x", base),
	}).Info("image loaded")
	return len(words)
}

// Words is an in-memory program.
type Words []uint32

// Load writes the words to bus starting at base.
func (w Words) Load(bus *cpu.Bus, base uint32) (int, error) {
	return Write(bus, base, w, nil), nil
}

// File is a program image on disk. It is read again on every load so that a reset picks
// up changes to the file.
type File struct {
	Path string
	// Binary selects the raw little-endian format instead of hex text.
	Binary bool
	// Log receives per-word Debug, dropped-word Warn and per-image Info messages.
	// Nil discards them.
	Log logrus.FieldLogger
}

// Load reads the file and writes it to bus at base.
func (f File) Load(bus *cpu.Bus, base uint32) (int, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return 0, fmt.Errorf("open image: %w", err)
	}
	defer fh.Close()

	if f.Binary {
		return loadBinary(fh, bus, base, f.Log)
	}
	return load(fh, bus, base, f.Log)
}

// ReadFile parses a hex text image from disk.
func ReadFile(path string) ([]uint32, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer fh.Close()

	return Parse(fh)
}

// Format renders words as a hex text image, one word per line.
func Format(words []uint32) string {
	var b strings.Builder
	for _, w := range words {
		fmt.Fprintf(&b, "0x%08x\n", w)
	}
	return b.String()
}

var (
	_ cpu.Program = Words(nil)
	_ cpu.Program = File{}
)
