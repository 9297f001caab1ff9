package codec

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry manages the available decoders
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder // key can be either name or extension
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		decoders: make(map[string]Decoder),
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by Register, Get and ForPath
func Default() *Registry {
	return defaultRegistry
}

// Register registers a decoder using both its name and its extensions
func Register(decoder Decoder) {
	defaultRegistry.Register(decoder)
}

// Get retrieves a decoder by name or extension
func Get(nameOrExt string) (Decoder, error) {
	return defaultRegistry.Get(nameOrExt)
}

// ForPath retrieves the decoder registered for the extension of path
func ForPath(path string) (Decoder, error) {
	return defaultRegistry.ForPath(path)
}

// List returns all registered decoders
func List() []Decoder {
	return defaultRegistry.List()
}

// Register registers a decoder using both its name and its extensions
func (r *Registry) Register(decoder Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.decoders[decoder.Name()] = decoder
	for _, ext := range decoder.Extensions() {
		r.decoders[normalizeExt(ext)] = decoder
	}
}

// Get retrieves a decoder by name or extension. A key that matches no name is
// looked up as an extension, with or without the leading dot and in any case.
func (r *Registry) Get(nameOrExt string) (Decoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.decoders[nameOrExt]; ok {
		return d, nil
	}
	if d, ok := r.decoders[normalizeExt(nameOrExt)]; ok {
		return d, nil
	}
	return nil, ErrDecoderNotFound
}

// ForPath retrieves the decoder registered for the extension of path
func (r *Registry) ForPath(path string) (Decoder, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, ErrDecoderNotFound
	}
	return r.Get(normalizeExt(ext))
}

// List returns all registered decoders (deduplicated, sorted by name)
func (r *Registry) List() []Decoder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Decoder]bool)
	decoders := make([]Decoder, 0)

	for _, d := range r.decoders {
		if !seen[d] {
			seen[d] = true
			decoders = append(decoders, d)
		}
	}

	sort.Slice(decoders, func(i, j int) bool {
		return decoders[i].Name() < decoders[j].Name()
	})
	return decoders
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
