package imagekit

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/wbrown/imagekit/imageutil"
)

// ErrUnknownOperation is returned for step names that are not registered.
var ErrUnknownOperation = errors.New("unknown operation")

// Codec loads and saves buffers. imageutil.FileCodec is the file-system
// implementation.
type Codec interface {
	Load(path string) (*imageutil.Buffer, error)
	Save(img *imageutil.Buffer, path string, format imageutil.Format, quality int) error
}

// Env is what an operation may reach outside its own parameters: the codec
// for second operands and the directory relative paths are resolved against.
type Env struct {
	Codec   Codec
	BaseDir string
}

// Resolve joins a relative path onto BaseDir.
func (e Env) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || e.BaseDir == "" {
		return path
	}
	return filepath.Join(e.BaseDir, path)
}

// Load decodes the image at path through the codec.
func (e Env) Load(path string) (*imageutil.Buffer, error) {
	if e.Codec == nil {
		return nil, fmt.Errorf("%w: no codec to load %q", imageutil.ErrLoad, path)
	}
	return e.Codec.Load(e.Resolve(path))
}

// Operation is one named step of a recipe.
type Operation interface {
	Name() string
	Description() string
	Apply(ctx context.Context, img *imageutil.Buffer, params Params, env Env) (*imageutil.Buffer, error)
}

// applyFunc is the body of a registered operation.
type applyFunc func(ctx context.Context, img *imageutil.Buffer, params Params, env Env) (*imageutil.Buffer, error)

// operation is the Operation used by every built-in step.
type operation struct {
	name        string
	description string
	apply       applyFunc
}

func (o *operation) Name() string        { return o.name }
func (o *operation) Description() string { return o.description }

func (o *operation) Apply(ctx context.Context, img *imageutil.Buffer, params Params, env Env) (*imageutil.Buffer, error) {
	return o.apply(ctx, img, params, env)
}

// NewOperation wraps fn as an Operation.
func NewOperation(name, description string, fn func(ctx context.Context, img *imageutil.Buffer, params Params, env Env) (*imageutil.Buffer, error)) Operation {
	return &operation{name: name, description: description, apply: fn}
}

var (
	registryMu sync.RWMutex
	operations = make(map[string]Operation)
)

// Register adds op to the registry, replacing any operation of the same
// name. It is safe to call while pipelines are running.
func Register(op Operation) {
	registryMu.Lock()
	defer registryMu.Unlock()
	operations[operationKey(op.Name())] = op
}

// Lookup returns the operation registered under name.
func Lookup(name string) (Operation, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	op, ok := operations[operationKey(name)]
	return op, ok
}

// Names returns every registered operation name, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(operations))
}

// Apply runs the named operation on img.
func Apply(ctx context.Context, name string, img *imageutil.Buffer, params Params, env Env) (*imageutil.Buffer, error) {
	op, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	return op.Apply(ctx, img, params, env)
}

func operationKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
