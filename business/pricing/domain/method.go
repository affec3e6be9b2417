// Package domain contains the core domain types for the pricing context.
package domain

import (
	"strings"

	"github.com/fd1az/resale-pricer/internal/apperror"
)

// MethodCode identifies an international shipping method.
type MethodCode string

const (
	MethodEP  MethodCode = "EP"  // ePacket, untracked small parcel
	MethodCF  MethodCode = "CF"  // Cpass via FedEx, metered
	MethodCD  MethodCode = "CD"  // Cpass via DHL, metered
	MethodEL  MethodCode = "EL"  // eLogistics, flat rate
	MethodCE  MethodCode = "CE"  // Cpass economy, budget tier
	MethodEMS MethodCode = "EMS" // postal express

	// MethodNone disables the low-value method so every shipment takes the
	// high-value one.
	MethodNone MethodCode = "NONE"
	// MethodAuto means no explicit override.
	MethodAuto MethodCode = "auto"
)

// UntrackedParcelMaxGrams is the hard weight ceiling of the ePacket method.
const UntrackedParcelMaxGrams Grams = 2000

// AllMethods lists every shippable method in display order.
var AllMethods = []MethodCode{MethodEP, MethodCE, MethodCF, MethodCD, MethodEL, MethodEMS}

var methodNames = map[MethodCode]string{
	MethodEP:  "ePacket",
	MethodCF:  "Cpass-FedEx",
	MethodCD:  "Cpass-DHL",
	MethodEL:  "eLogistics",
	MethodCE:  "Cpass-Economy",
	MethodEMS: "EMS",
}

// ParseMethodCode accepts any shippable method code, case-insensitively.
func ParseMethodCode(s string) (MethodCode, error) {
	code := MethodCode(strings.ToUpper(strings.TrimSpace(s)))
	if !code.IsShippable() {
		return "", apperror.Validationf(apperror.CodeUnknownShippingMethod, "method %q", s)
	}
	return code, nil
}

// IsShippable reports whether m maps to a rate table.
func (m MethodCode) IsShippable() bool {
	_, ok := methodNames[m]
	return ok
}

// IsOverride reports whether m, used as the policy override, forces a method.
func (m MethodCode) IsOverride() bool {
	return m != "" && m != MethodAuto
}

// Name returns the display name, or the raw code for unknown methods.
func (m MethodCode) Name() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return string(m)
}

func (m MethodCode) String() string { return string(m) }

// IsMetered reports whether the method is priced with carrier surcharge math.
func (m MethodCode) IsMetered() bool {
	return m == MethodCF || m == MethodCD
}

// UsesActualWeightOnly reports whether the method ignores volumetric weight.
func (m MethodCode) UsesActualWeightOnly() bool {
	return m == MethodEP || m == MethodEMS
}

// VolumetricDivisor is the cm³-per-gram divisor for the method.
func (m MethodCode) VolumetricDivisor() int64 {
	if m == MethodCE {
		return 8
	}
	return 5
}
