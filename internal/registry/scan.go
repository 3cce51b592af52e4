package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExtensionsDir is the directory under a root that Scan looks into.
const ExtensionsDir = "Extensions"

// Bundle is what one extension file contributes.
type Bundle struct {
	Instruments []InstrumentClass
	Percussions []PercussionClass
	Singers     []SingerClass
	Extensions  []Extension
}

// Loader turns one file into a Bundle. A Loader never touches the registry;
// Scan registers what it returns.
type Loader func(path string) (Bundle, error)

// SetLoader binds a loader to a file suffix such as ".yaml". A nil loader
// removes the binding.
func (r *Registry) SetLoader(suffix string, l Loader) {
	suffix = strings.ToLower(suffix)
	if l == nil {
		delete(r.loaders, suffix)
		return
	}
	r.loaders[suffix] = l
}

// AddBundle registers every class and extension of b, in order.
func (r *Registry) AddBundle(b Bundle) {
	for _, c := range b.Instruments {
		r.RegisterInstrument(c)
	}
	for _, c := range b.Percussions {
		r.RegisterPercussion(c)
	}
	for _, c := range b.Singers {
		r.RegisterSinger(c)
	}
	for _, e := range b.Extensions {
		r.RegisterExtension(e)
	}
}

// Scan loads every file in root/Extensions whose suffix has a loader, in
// name order. A file that fails to load is skipped; its error is joined into
// the returned error and scanning continues. A missing directory is not an
// error.
func (r *Registry) Scan(root string) (int, error) {
	dir := filepath.Join(root, ExtensionsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("registry: scan %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var (
		loaded int
		errs   []error
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		load, ok := r.loaders[strings.ToLower(filepath.Ext(e.Name()))]
		if !ok {
			continue
		}
		path := filepath.Join(dir, e.Name())
		b, err := load(path)
		if err != nil {
			r.logger.Warn("registry: extension failed", "path", path, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		r.AddBundle(b)
		loaded++
		r.logger.Info("registry: loaded extension", "path", path,
			"instruments", len(b.Instruments), "percussions", len(b.Percussions),
			"singers", len(b.Singers), "extensions", len(b.Extensions))
	}
	return loaded, errors.Join(errs...)
}
