package orchestration

import "fmt"

// Variant names.
const (
	VariantCallback   = "callback"
	VariantStructured = "structured"
	VariantMainSafe   = "mainsafe"
	// VariantAll selects every variant.
	VariantAll = "all"
)

// Variants lists the single variants in a stable order.
var Variants = []string{VariantCallback, VariantStructured, VariantMainSafe}

// IsValidVariant reports whether name is a single variant or "all".
func IsValidVariant(name string) bool {
	if name == VariantAll {
		return true
	}
	for _, v := range Variants {
		if v == name {
			return true
		}
	}
	return false
}

// New builds the orchestrator for a single variant.
func New(variant string, d Deps) (Orchestrator, error) {
	var (
		o   Orchestrator
		err error
	)
	switch variant {
	case VariantCallback:
		o, err = NewCallbackChain(d)
	case VariantStructured:
		o, err = NewStructuredChain(d)
	case VariantMainSafe:
		o, err = NewMainSafeChain(d)
	default:
		return nil, fmt.Errorf("orchestration: unknown variant %q", variant)
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Select returns the orchestrators to run for variant. "all" yields every
// variant in the order of Variants.
//
// Parameters:
//   - variant: a name from Variants, or VariantAll.
//   - d: the collaborators shared by the orchestrators.
//
// Returns:
//   - []Orchestrator: the orchestrators to trigger.
//   - error: if the variant is unknown or d is incomplete.
func Select(variant string, d Deps) ([]Orchestrator, error) {
	names := []string{variant}
	if variant == VariantAll {
		names = Variants
	}
	out := make([]Orchestrator, 0, len(names))
	for _, name := range names {
		o, err := New(name, d)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
