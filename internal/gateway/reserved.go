package gateway

// Variant distinguishes the main web API from the experimental
// "meta-package" variant. Both share all pipeline logic except
// the reserved-key prefix and the set of reserved keys injected.
type Variant int

const (
	// VariantMain is the primary web action route, mounted with
	// enforceExtension=false by default.
	VariantMain Variant = iota
	// VariantExperimental is the legacy meta-package route, mounted with
	// enforceExtension=true.
	VariantExperimental
)

// Reserved key names injected into the activation payload. The method and
// user/namespace names differ by variant (see methodKeyName/ownerKeyName);
// headers, path, query, and body keep the same name under either prefix.
const (
	keyHeaders = "headers"
	keyPath    = "path"
	keyQuery   = "query"
	keyBody    = "body"
)

// prefix returns the reserved-key prefix for this variant.
func (v Variant) prefix() string {
	if v == VariantExperimental {
		return "__ow_meta_"
	}
	return "__ow_"
}

// methodKeyName returns the reserved-key name (without prefix) carrying the
// lowercased HTTP method: "method" for the main variant, "verb" for the
// experimental variant.
func (v Variant) methodKeyName() string {
	if v == VariantExperimental {
		return "verb"
	}
	return "method"
}

// ownerKeyName returns the reserved-key name (without prefix) carrying the
// caller-identifying value: "user" (the authenticated subject) for the main
// variant, "namespace" (the resolved namespace) for the experimental
// variant.
func (v Variant) ownerKeyName() string {
	if v == VariantExperimental {
		return "namespace"
	}
	return "user"
}

// reservedKeys returns the full set of reserved property names injected
// for this variant. The experimental variant only carries verb,
// headers, path, and namespace — it has no query/body reserved keys
// (those are a main-variant-only, raw-http-only concept).
func (v Variant) reservedKeys() map[string]bool {
	p := v.prefix()
	keys := map[string]bool{
		p + v.methodKeyName(): true,
		p + keyHeaders:        true,
		p + keyPath:           true,
		p + v.ownerKeyName():  true,
	}
	if v == VariantMain {
		keys[p+keyQuery] = true
		keys[p+keyBody] = true
	}
	return keys
}

// EnforceExtensionDefault reports whether this variant enforces an
// explicit extension on the URL by default.
func (v Variant) EnforceExtensionDefault() bool {
	return v == VariantExperimental
}
