package cgen

// helperKind identifies one reusable helper macro. The set is closed: the
// width/signedness combinations that need correction logic are known up
// front, so lowering rules select from this enumeration rather than
// synthesizing helpers at run time.
type helperKind uint8

const (
	// helperUtoS reinterprets an unsigned value as the signed type of the
	// same width, keeping the two's-complement bit pattern. A direct C cast
	// is implementation-defined once the value exceeds the signed maximum;
	// the macro subtracts in the unsigned domain first, which is always
	// defined and lands on the same bit pattern.
	helperUtoS helperKind = iota
)

const utosMacro = `/* Casts an unsigned integer to a signed integer of the same width.
 * A direct cast is implementation-defined once the value exceeds the
 * signed maximum, so the excess is first reduced in the unsigned domain
 * and the remaining offset is applied after the reinterpreting cast,
 * where every intermediate value is representable.
 * `+"`u`"+` is the unsigned type, `+"`s`"+` the signed type, `+"`v`"+` the value and
 * `+"`m`"+` the maximum value of the signed type.
 *
 * example: __ferro_utos(uint32_t, int32_t, x, INT32_MAX)
 */
#define __ferro_utos(u, s, v, m) \
    ((v) <= (m) ? ((s)(v)) : ((s)((u)(v) - (u)(m) - 1) - (m) - 1))
`

// helperText returns the macro definition for a helper kind.
func helperText(k helperKind) string {
	switch k {
	case helperUtoS:
		return utosMacro
	default:
		return ""
	}
}
