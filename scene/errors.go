package scene

import "errors"

// Sentinel errors for construction-phase scene-build failures; these
// propagate to the top-level render driver and abort the run.
var ErrNoRoot = errors.New("scene: missing root <scene> element")
var ErrUnknownElement = errors.New("scene: unrecognized element")
var ErrUnknownMaterial = errors.New("scene: reference to an undefined material")
var ErrUnknownSpectrum = errors.New("scene: reference to an undefined spectrum")
var ErrNoShapes = errors.New("scene: scene file defines no shapes")
var ErrNoSensors = errors.New("scene: scene file defines no sensors")
var ErrMeshParse = errors.New("scene: failed to parse an inline mesh element")
var ErrMalformedElement = errors.New("scene: element missing a required attribute")
