// Package detection finds lines of digits in photographs with the Stroke
// Width Transform.
//
// # Pipeline
//
// Detector.Detect runs these stages in order, each consuming the complete
// output of the previous one:
//
//  1. Edges: an EdgeProvider returns the edge mask and gradient fields.
//  2. StrokeWidthTransform: a ray is cast from every edge pixel along its
//     gradient to the facing edge; each pixel keeps the thinnest ray crossing it.
//  3. MedianFilter: every ray caps its pixels at its median width.
//  4. ConnectedComponents: pixels with compatible widths are joined with a
//     union-find forest.
//  5. FilterComponents: implausible components are dropped using a rotated
//     minimal bounding box search and a containment test.
//  6. MakeChains: similar neighbouring components are paired and greedily
//     merged into lines.
//  7. AcceptChains and BuildPatch: lines that are wide, tall and level enough
//     are straightened into binary patches for OCR.
//
// Analyze runs stages 2 to 6 on its own, which is what the debug renders and
// the MCP component tool use.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounds are inclusive on both corners
//
// # Determinism
//
// Every stage iterates in row-major or index order and sorts stably, so the
// same image and parameters always produce the same chains. The chain merge
// is greedy and order-sensitive; a different seed order could legally produce
// different lines.
//
// # Degenerate Vectors
//
// A zero gradient casts no ray, and a ray that ends on an edge pixel with a
// zero gradient is rejected. A chain whose endpoint centers coincide gets a
// zero direction, which fails every merge angle test.
package detection
