package aot

import (
	"errors"
	"fmt"
)

var ErrRegisterPoolExhausted = errors.New("virtual register pool exhausted")

var physical = [...]string{"rax", "rcx", "rdx"}

// Physical maps a virtual register onto the physical pool.
func Physical(vreg int) (string, error) {
	if vreg < 0 || vreg >= len(physical) {
		return "", fmt.Errorf("%w: v%d (pool has %d registers)", ErrRegisterPoolExhausted, vreg, len(physical))
	}
	return physical[vreg], nil
}

// RegAlloc is a bump allocator over virtual registers. The mark is the
// lowest register not known to be live; registers are freed in stack order.
// There is no spilling.
type RegAlloc struct {
	mark int
}

// Alloc claims vreg and moves the mark just past it.
func (r *RegAlloc) Alloc(vreg int) (string, error) {
	reg, err := Physical(vreg)
	if err != nil {
		return "", err
	}
	r.mark = vreg + 1
	return reg, nil
}

// AllocNew claims the register at the mark.
func (r *RegAlloc) AllocNew() (int, error) {
	vreg := r.mark
	if _, err := Physical(vreg); err != nil {
		return 0, err
	}
	r.mark++
	return vreg, nil
}

// Free lowers the mark to vreg. Freeing a register above the mark is a
// no-op.
func (r *RegAlloc) Free(vreg int) {
	if vreg <= r.mark {
		r.mark = vreg
	}
}

func (r *RegAlloc) Mark() int {
	return r.mark
}

// Live lists the virtual registers below the mark.
func (r *RegAlloc) Live() []int {
	live := make([]int, 0, r.mark)
	for v := 0; v < r.mark && v < len(physical); v++ {
		live = append(live, v)
	}
	return live
}
