// Package scene describes one completed rendering pass in a form the
// verification engine can navigate.
//
// A Scene is handed over by the plotting collaborator after a plot-producing
// call returns. It exposes subplots, the artifact groups drawn into each
// subplot, per-element raw channel values and legends. Raw values are kept in
// the shape the collaborator produced them; normalization into comparable
// channel sequences happens in package extract.
//
// # Ownership
//
// A Scene is owned by the harness for exactly one verification call and is
// closed when that call returns. Nothing in the engine mutates a Scene or
// anything reachable from it; all accessors return the collaborator's data
// as-is and callers must treat it as read-only.
//
// # Artifact kinds
//
// Kind is a closed set:
//
//   - point-cloud: scatter-like elements (color, marker, size, alpha)
//   - line-set: one element per line (color, style, alpha)
//   - bar-group: one element per bar (color)
//   - polygon-group: filled areas, wedges and patches (color, alpha, style)
//   - image: color-mapped rasters, described only by their sampled colormap
//
// The channel table for each kind lives in package extract.
//
// # Fixtures
//
// Figure is the in-memory Scene implementation. It decodes from YAML so that
// scenario files can describe a rendered figure directly:
//
//	canvas: {x: 0, y: 0, width: 640, height: 480}
//	subplots:
//	  - id: ax0
//	    groups:
//	      - kind: point-cloud
//	        elements:
//	          - {color: "#1f77b4", marker: o, size: 20}
//	          - {color: "#ff7f0e", marker: s, size: 20}
//	    legend:
//	      bounds: {x: 500, y: 20, width: 100, height: 40}
//	      entries:
//	        - {label: first, color: "#1f77b4", marker: o}
//	        - {label: second, color: "#ff7f0e", marker: s}
package scene
