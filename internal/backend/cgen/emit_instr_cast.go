package cgen

import (
	"fmt"

	"ferroc/internal/mir"
	"ferroc/internal/types"
)

// castStrategy names one row of the closed cast table. Every integer cast
// the backend accepts maps to exactly one strategy; anything else is
// rejected up front instead of falling through to a C cast with
// implementation-defined behavior.
type castStrategy uint8

const (
	// castPlain is a bare C cast: same signedness, or signed to unsigned
	// (modular wrapping is what C guarantees there).
	castPlain castStrategy = iota
	// castUtoSWiden widens an unsigned value through int64_t, then
	// reinterprets at 64 bits. The widening cast is value-preserving, so
	// only the final reinterpretation needs the helper.
	castUtoSWiden
	// castUtoSSame reinterprets an unsigned value as signed at the same
	// width via the helper macro.
	castUtoSSame
	// castUtoSTrunc truncates in the unsigned domain first, then
	// reinterprets at the target width.
	castUtoSTrunc
)

type castPlan struct {
	strategy castStrategy
	src, dst intInfo
}

// planCast classifies an integer-to-integer cast. Bool and pointer sources
// are not integer casts and are rejected here.
func (fe *funcEmitter) planCast(c *mir.CastOp) (castPlan, error) {
	src, okSrc := lookupIntInfo(fe.e.types, c.Value.Type)
	dst, okDst := lookupIntInfo(fe.e.types, c.TargetTy)
	if !okSrc || !okDst {
		return castPlan{}, &UnsupportedOperationError{
			Op: "cast",
			Types: []string{
				types.Describe(fe.e.types, c.Value.Type),
				types.Describe(fe.e.types, c.TargetTy),
			},
		}
	}
	plan := castPlan{src: src, dst: dst}
	switch {
	case src.signed == dst.signed, src.signed && !dst.signed:
		plan.strategy = castPlain
	case dst.bits > src.bits:
		plan.strategy = castUtoSWiden
	case dst.bits == src.bits:
		plan.strategy = castUtoSSame
	default:
		plan.strategy = castUtoSTrunc
	}
	return plan, nil
}

func (fe *funcEmitter) emitCast(c *mir.CastOp) (string, error) {
	plan, err := fe.planCast(c)
	if err != nil {
		return "", err
	}
	val, err := fe.emitOperand(&c.Value)
	if err != nil {
		return "", err
	}
	switch plan.strategy {
	case castPlain:
		if plan.src.bits == plan.dst.bits && plan.src.signed == plan.dst.signed {
			return val, nil
		}
		return fmt.Sprintf("(%s) %s", plan.dst.cName(), val), nil
	case castUtoSWiden:
		fe.e.useHelper(helperUtoS)
		return fmt.Sprintf("__ferro_utos(%s, %s, (%s) %s, %s)",
			unsignedName(plan.dst.bits), signedName(plan.dst.bits), signedName(plan.dst.bits), val, signedMaxName(plan.dst.bits)), nil
	case castUtoSSame:
		fe.e.useHelper(helperUtoS)
		return fmt.Sprintf("__ferro_utos(%s, %s, %s, %s)",
			unsignedName(plan.dst.bits), signedName(plan.dst.bits), val, signedMaxName(plan.dst.bits)), nil
	case castUtoSTrunc:
		fe.e.useHelper(helperUtoS)
		return fmt.Sprintf("__ferro_utos(%s, %s, (%s) %s, %s)",
			unsignedName(plan.dst.bits), signedName(plan.dst.bits), unsignedName(plan.dst.bits), val, signedMaxName(plan.dst.bits)), nil
	default:
		return "", &UnsupportedOperationError{Op: "cast"}
	}
}
