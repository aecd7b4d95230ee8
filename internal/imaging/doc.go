// Package imaging provides the pixel-level primitives around bib number
// detection: decoding and caching photos, computing the edge mask and
// gradient fields that drive the stroke width transform, preparing rotated
// binary patches for OCR, and rendering debug images.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// Dense per-pixel data (edge masks, gradients, value maps) is stored in
// row-major slices indexed by y*width+x.
//
// # Edge Fields
//
// ComputeEdgeField runs Canny on the 8-bit grayscale image to produce a
// binary mask, and derives smoothed Scharr gradients from the normalized
// grayscale image. Canny wraps it as a value that the detection package can
// swap for synthetic fields in tests.
//
// # OCR Patches
//
// BinarizeRegion, RotateAbout and FinishPatch turn the components of one
// text line into a single white-on-black patch: Otsu thresholding per
// component, rotation to horizontal, cropping with a border, upscaling and
// erosion.
//
// # Inspection
//
// Encode, DrawBoxes, CropRegion and GridOverlay back the server's debug
// tools. GridOverlay shades the top and bottom border bands so exclusion
// settings can be checked against a real photo.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and can be called concurrently on different images.
package imaging
