// Package features computes named morphometrics over neurites,
// morphologies and populations.
//
// Every feature is registered in a [Registry] under a name, a [Scope] and
// a result [Shape]. [Get] dispatches on the target:
//
//	total, _ := features.Get("total_length", m)                       // sum over neurites
//	axon, _ := features.Get("section_lengths", m,
//	    features.WithNeuriteType(morph.TypeAxon))                      // concatenated
//	perCell, _ := features.Get("number_of_neurites", pop)             // one value per member
//
// A neurite feature called on a morphology runs on each neurite that
// matches the neurite type and combines the results: scalars are summed
// and sequences concatenated in neurite order. With subtree processing
// enabled on the morphology, the type selects homogeneous subtrees
// instead of whole neurites.
//
// A population accepts population and morphology features only; a
// neurite feature on a population fails with NEUROM_ERROR.
//
// # Custom features
//
// Register features on [Default] or on a private registry:
//
//	reg := features.NewRegistry()
//	err := reg.RegisterNeurite("tip_count", features.ShapeScalar, "Leaves.",
//	    func(v *morph.SubtreeView, o *features.Options) (features.Value, error) { ... })
//
// Registering a name twice in one scope fails.
//
// # Caching
//
// [Getter] wraps a registry with a [cache.Cache] keyed by the morphology
// fingerprint and emits observability hooks.
package features
