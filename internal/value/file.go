package value

import (
	"fmt"

	"github.com/google/uuid"
)

// FileRegistry is the engine-side half of §5's "file handle table maps
// numeric ids to opaque I/O handles owned by the environment": the value
// layer only ever carries the id, never the underlying *os.File or
// descriptor, so the registry hands out collision-free opaque ids rather
// than reusing small integers a caller might mistake for a real fd.
type FileRegistry struct {
	handles map[string]interface{}
}

// NewFileRegistry returns an empty registry.
func NewFileRegistry() *FileRegistry {
	return &FileRegistry{handles: make(map[string]interface{})}
}

// Open mints a fresh opaque id for handle (an *os.File, a net.Conn, or
// any other I/O object the environment owns) and returns the File Value
// referencing it.
func (r *FileRegistry) Open(handle interface{}) Value {
	id := uuid.NewString()
	r.handles[id] = handle
	return Value{Tag: File, Body: id}
}

// Resolve returns the handle behind a File Value, or false if it has
// already been closed or v is not a File.
func (r *FileRegistry) Resolve(v Value) (interface{}, bool) {
	id, ok := v.Body.(string)
	if v.Tag != File || !ok {
		return nil, false
	}
	h, ok := r.handles[id]
	return h, ok
}

// Close drops the registry's reference to v's handle.
func (r *FileRegistry) Close(v Value) bool {
	id, ok := v.Body.(string)
	if v.Tag != File || !ok {
		return false
	}
	if _, present := r.handles[id]; !present {
		return false
	}
	delete(r.handles, id)
	return true
}

func fileString(v Value) string {
	id, _ := v.Body.(string)
	return fmt.Sprintf("file(%s)", id)
}
