// Package layout calculates sizes, alignments and member offsets.
//
// Standard width mode packs members with no padding. Native width mode
// follows the C rules of the selected data model:
//
//	member offset   aligned to the member's alignment
//	record align    max member alignment
//	record size     end of last member rounded up to record align
//	array           element size × length, element alignment
//
// Gaps are made explicit as pad tokens by Pad.
//
// This package is internal to record.
package layout
