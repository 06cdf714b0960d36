// Package schema loads record definitions from YAML.
//
//	defaults:
//	  byte_order: little
//	records:
//	  - name: Point
//	    fields:
//	      - {name: x, type: int16}
//	      - {name: y, type: int16}
//	  - name: Path
//	    fields:
//	      - {name: count, type: uint8}
//	      - {name: points, type: "Point[4]"}
//	  - name: Node
//	    width: native
//	    byte_order: native
//	    platform: lp64
//	    fields:
//	      - {name: value, type: long}
//	      - {name: next, type: "ptr>Node"}
//
// Records may appear in any order. Records embedded by value are defined
// first; embedding cycles are rejected, pointers may form cycles freely.
package schema
