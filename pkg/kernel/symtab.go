package kernel

import "fmt"

// SymbolTable is an append-only, length-prefixed byte buffer: intern(s)
// returns the existing handle if one matches bytewise, else appends and
// returns a new one (spec.md §3.4). It is generalized from the teacher's
// pkg/compiler/symtable.go, which maps variable names to stack/label
// descriptors in a similar append-mostly map; here there is no descriptor,
// only a stable integer handle, because the kernel's symbols carry no
// compile-time type/scope information of their own.
type SymbolTable struct {
	buf     []byte
	offsets []int // offsets[handle] = start index into buf of that entry
	index   map[string]uint64
	maxBits uint // capacity check against the Symbol payload width
}

// NewSymbolTable creates an empty table. bufferSize (spec.md §6's
// symbol_buffer_size boot option) is the character buffer's initial
// capacity; the buffer grows past it as symbols are interned, and only
// Intern's handle-width check limits the table.
func NewSymbolTable(bufferSize int) *SymbolTable {
	return &SymbolTable{
		buf:     make([]byte, 0, bufferSize),
		offsets: []int{0},
		index:   make(map[string]uint64),
		maxBits: payloadW,
	}
}

// Intern returns the stable handle for s, creating an entry if necessary.
// Exceeding the symbol payload's bit capacity is a fatal configuration
// error per spec.md §4.4.
func (st *SymbolTable) Intern(s string) uint64 {
	if h, ok := st.index[s]; ok {
		return h
	}
	handle := uint64(len(st.offsets) - 1)
	if handle>>st.maxBits != 0 {
		panic(fmt.Sprintf("kernel: symbol table exceeded handle capacity (%d bits) interning %q", st.maxBits, s))
	}
	st.buf = append(st.buf, byte(len(s)>>8), byte(len(s)))
	st.buf = append(st.buf, s...)
	st.offsets = append(st.offsets, len(st.buf))
	st.index[s] = handle
	return handle
}

// Lookup returns the bytes interned under handle. ok is false if the handle
// was never issued by this table.
func (st *SymbolTable) Lookup(handle uint64) (string, bool) {
	if handle+1 >= uint64(len(st.offsets)) {
		return "", false
	}
	start := st.offsets[handle]
	lenHi, lenLo := st.buf[start], st.buf[start+1]
	n := int(lenHi)<<8 | int(lenLo)
	return string(st.buf[start+2 : start+2+n]), true
}

// Len returns the number of distinct interned symbols.
func (st *SymbolTable) Len() int {
	return len(st.offsets) - 1
}
