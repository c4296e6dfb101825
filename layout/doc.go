// Package layout reconstructs reading-order page layout from unordered
// geometric content: it assembles raw text spans into lines, classifies
// vector-drawing clusters as decorative or significant, partitions the page
// into ordered column boxes, and composes text, table and image regions into
// one linear reading sequence per page.
//
// All detectors are deterministic, single-threaded and free of shared state;
// every pass works on per-call copies of its inputs, so caller-supplied
// slices are never mutated.
package layout
