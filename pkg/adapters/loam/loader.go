package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Loader adapts the Loam library to the ports.MachineLoader interface.
// Every Markdown/YAML/JSON document declaring an initial state is a machine.
type Loader struct {
	Repo *loam.TypedRepository[MachineMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[MachineMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository rooted at dir.
// Strict mode keeps numbers as json.Number so symbols such as 0 and 1 keep their spelling.
func Open(dir string) (*Loader, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library dir: %w", err)
	}
	repo, err := loam.Init(abs,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
		loam.WithVersioning(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open machine library %s: %w", dir, err)
	}
	return New(loam.NewTypedRepository[MachineMetadata](repo)), nil
}

// GetMachine compiles the named machine.
// The name is tried as a document ID first, then matched against declared names.
func (l *Loader) GetMachine(ctx context.Context, name string) (*domain.Machine, error) {
	doc, err := l.Repo.Get(ctx, name)
	if err == nil && doc.Data.IsMachine() {
		return compile(doc.ID, doc.Data, doc.Content)
	}

	docs, listErr := l.Repo.List(ctx)
	if listErr != nil {
		return nil, fmt.Errorf("loam list failed: %w", listErr)
	}
	for _, d := range docs {
		if d.Data.IsMachine() && machineName(d.ID, d.Data) == name {
			return compile(d.ID, d.Data, d.Content)
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
}

// ListMachines lists the machines in the repository.
func (l *Loader) ListMachines(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		if !doc.Data.IsMachine() {
			continue
		}
		name := machineName(doc.ID, doc.Data)
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: machine '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func compile(docID string, meta MachineMetadata, content string) (*domain.Machine, error) {
	var raw map[string]any
	if err := mapstructure.Decode(meta, &raw); err != nil {
		return nil, fmt.Errorf("failed to read metadata of %s: %w", docID, err)
	}
	raw["name"] = machineName(docID, meta)
	if meta.Description == "" {
		raw["description"] = strings.TrimSpace(content)
	}

	doc, err := compiler.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", docID, err)
	}
	m, err := compiler.Compile(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", docID, err)
	}
	return m, nil
}

func machineName(docID string, meta MachineMetadata) string {
	switch {
	case meta.Name != "":
		return meta.Name
	case meta.ID != "":
		return trimExtension(meta.ID)
	}
	return trimExtension(docID)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
