package arix

// InstanceBuffer holds one model matrix per instance of a mesh. Writers set
// matrices and call MarkDirty; the renderer caches the owning node's
// per-instance world matrices and clears the flag after rebuilding them. A
// SetMatrixAt without MarkDirty stays invisible until the next rebuild.
type InstanceBuffer struct {
	matrices []Mat4
	dirty    bool
	version  uint64
}

// NewInstanceBuffer allocates a buffer of count identity matrices.
func NewInstanceBuffer(count int) *InstanceBuffer {
	if count < 0 {
		count = 0
	}
	b := &InstanceBuffer{matrices: make([]Mat4, count)}
	for i := range b.matrices {
		b.matrices[i] = Identity()
	}
	return b
}

// Count returns the number of instances.
func (b *InstanceBuffer) Count() int {
	return len(b.matrices)
}

// SetMatrixAt stores the model matrix of instance i. Out of range indices are
// ignored.
func (b *InstanceBuffer) SetMatrixAt(i int, m Mat4) {
	if i < 0 || i >= len(b.matrices) {
		return
	}
	b.matrices[i] = m
}

// MatrixAt returns the model matrix of instance i.
func (b *InstanceBuffer) MatrixAt(i int) Mat4 {
	return b.matrices[i]
}

// MarkDirty flags the buffer as changed since the last upload.
func (b *InstanceBuffer) MarkDirty() {
	b.dirty = true
	b.version++
}

// Dirty reports whether the buffer changed since the last ClearDirty.
func (b *InstanceBuffer) Dirty() bool {
	return b.dirty
}

// ClearDirty resets the dirty flag.
func (b *InstanceBuffer) ClearDirty() {
	b.dirty = false
}

// Version counts MarkDirty calls over the buffer's lifetime.
func (b *InstanceBuffer) Version() uint64 {
	return b.version
}
