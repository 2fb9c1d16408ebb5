// Package index maintains the parsed view of a project directory and the
// process cache in front of it. The cache is an explicit object owned by
// the composition root and handed to whoever needs it; nothing here is
// global state.
package index

import (
	"path"
	"sort"
	"strings"
	"time"

	"restruct/internal/storage"
	"restruct/internal/syntax"
)

// sourceExt is the extension of the source modules this engine indexes.
const sourceExt = ".cs"

// skipDirs are directory names excluded from scans.
var skipDirs = map[string]struct{}{
	".git": {}, "bin": {}, "obj": {}, "node_modules": {},
}

// TypeEntry summarizes one type declaration for index consumers.
type TypeEntry struct {
	Path      string
	Namespace string
	Name      string
	Members   []string
}

// Project is the parsed index of one root: every source module plus a
// type-level summary. Modules are keyed by slash-separated path relative to
// the root.
type Project struct {
	Root     string
	Modules  map[string]*syntax.Module
	Types    []TypeEntry
	LoadedAt time.Time
	// Broken records files that failed to parse; they stay out of Modules
	// but their presence is visible.
	Broken map[string]string
}

// TypesByName returns index entries for a type name, in path order.
func (p *Project) TypesByName(name string) []TypeEntry {
	var out []TypeEntry
	for _, t := range p.Types {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

// fileKey identifies a file version for the parse cache.
type fileKey struct {
	path  string
	mtime int64
	size  int64
}

// Load scans the store's root for source modules and parses them, consulting
// the parse cache per file. This is the expensive path behind a cache miss.
func Load(store *storage.FS, parsed *lruTTL[fileKey, *syntax.Module]) (*Project, error) {
	p := &Project{
		Root:     store.Root(),
		Modules:  map[string]*syntax.Module{},
		Broken:   map[string]string{},
		LoadedAt: time.Now(),
	}
	files, err := listSources(store, ".")
	if err != nil {
		return nil, err
	}
	for _, rel := range files {
		mod, perr := parseCached(store, parsed, rel)
		if perr != nil {
			p.Broken[rel] = perr.Error()
			continue
		}
		p.Modules[rel] = mod
		for _, td := range mod.Types {
			entry := TypeEntry{Path: rel, Namespace: mod.Namespace, Name: td.Name}
			for _, mem := range td.Members {
				entry.Members = append(entry.Members, mem.Name())
			}
			p.Types = append(p.Types, entry)
		}
	}
	sort.Slice(p.Types, func(i, j int) bool {
		if p.Types[i].Name != p.Types[j].Name {
			return p.Types[i].Name < p.Types[j].Name
		}
		return p.Types[i].Path < p.Types[j].Path
	})
	return p, nil
}

func parseCached(store *storage.FS, parsed *lruTTL[fileKey, *syntax.Module], rel string) (*syntax.Module, error) {
	info, err := store.Stat(rel)
	if err != nil {
		return nil, err
	}
	key := fileKey{path: rel, mtime: info.ModTime().UnixNano(), size: info.Size()}
	if mod, ok := parsed.get(key); ok {
		return mod, nil
	}
	text, _, err := store.ReadText(rel)
	if err != nil {
		return nil, err
	}
	mod, err := syntax.Parse(text)
	if err != nil {
		return nil, err
	}
	parsed.set(key, mod)
	return mod, nil
}

func listSources(store *storage.FS, dir string) ([]string, error) {
	entries, err := store.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		rel := path.Join(dir, name)
		if e.IsDir() {
			if _, skip := skipDirs[name]; skip {
				continue
			}
			sub, err := listSources(store, rel)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		if strings.HasSuffix(name, sourceExt) {
			out = append(out, rel)
		}
	}
	return out, nil
}
