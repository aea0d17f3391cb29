package vm

// ---------------------------------------------------------------------------
// Variable environment
// ---------------------------------------------------------------------------

// Env is the mutable named-value store shared across the init/frame/beat/
// point phases of one script instance. Names are case-sensitive. Reading an
// unset name yields 0, never an error.
type Env struct {
	vars map[string]float64
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{vars: make(map[string]float64, 32)}
}

// Get returns the value of name, or 0 if unset.
func (e *Env) Get(name string) float64 {
	return e.vars[name]
}

// Set stores v under name.
func (e *Env) Set(name string, v float64) {
	e.vars[name] = v
}

// Has reports whether name has been set.
func (e *Env) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Len returns the number of set variables.
func (e *Env) Len() int {
	return len(e.vars)
}

// ---------------------------------------------------------------------------
// Sparse scratch buffers
// ---------------------------------------------------------------------------

// SparseBuffer is an integer-indexed scratch store (megabuf). Unset or
// negative indices read as 0; writes auto-extend.
type SparseBuffer struct {
	cells map[int]float64
}

// NewSparseBuffer creates an empty buffer.
func NewSparseBuffer() *SparseBuffer {
	return &SparseBuffer{cells: make(map[int]float64)}
}

// Get returns the value at index i, or 0 when i is unset or negative.
func (b *SparseBuffer) Get(i int) float64 {
	if i < 0 {
		return 0
	}
	return b.cells[i]
}

// Set stores v at index i. Negative indices are dropped.
func (b *SparseBuffer) Set(i int, v float64) {
	if i < 0 {
		return
	}
	b.cells[i] = v
}

// Reset clears all cells.
func (b *SparseBuffer) Reset() {
	clear(b.cells)
}

// Len returns the number of populated cells.
func (b *SparseBuffer) Len() int {
	return len(b.cells)
}

// Buffers bundles the local and global scratch buffers threaded through an
// evaluation.
type Buffers struct {
	Local  *SparseBuffer
	Global *SparseBuffer
}

// ---------------------------------------------------------------------------
// Global buffer store
// ---------------------------------------------------------------------------

// GlobalStore owns the process-wide gmegabuf shared by every loaded preset.
// It is never cleared on preset switch; the host resets it explicitly.
// All access happens on the single render thread, so there is no locking.
type GlobalStore struct {
	buf *SparseBuffer
}

// NewGlobalStore creates an empty global store.
func NewGlobalStore() *GlobalStore {
	return &GlobalStore{buf: NewSparseBuffer()}
}

// Buffer returns the shared buffer.
func (g *GlobalStore) Buffer() *SparseBuffer {
	return g.buf
}

// Reset clears the shared buffer.
func (g *GlobalStore) Reset() {
	g.buf.Reset()
}
