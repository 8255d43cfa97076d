// Package diag defines the diagnostic model shared by the parser, the
// assembler, the verifier and the disassembler.
//
// A Diagnostic carries a Severity, a stable numeric Code (rendered as
// SYNxxxx, ASMxxxx, VERxxxx, IOxxxx or DISxxxx), a short message and the
// primary source.Span, which for assembly listings is a file and a 1-based
// line. Line 0 marks findings that are not tied to a single line.
//
// Phases emit through a Reporter so that storage stays decoupled from the
// producer. BagReporter collects into a Bag; SyncReporter does the same for
// batch runs where several listings are assembled concurrently.
//
// Package diag does no formatting or IO; rendering lives in internal/diagfmt.
package diag
