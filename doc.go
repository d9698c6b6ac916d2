// Package plasmafilter rewrites CNC plasma-cutting G-code programs.
//
// It follows the LinuxCNC filter-program model: the whole program is
// read, processed, and printed to standard output, with diagnostics
// going to standard error. Processing happens in two passes. Pass one
// classifies every line and tracks modal machine state; pass two scans
// the materialized program for closed counter-clockwise arcs (holes)
// and replaces qualifying ones with generated lead-in, segmented-speed,
// or mark-pulse motion sequences.
//
// All internal geometry is in millimeters. The run's unit system is
// fixed once from machine configuration and determines output decimal
// precision for the whole run.
package plasmafilter
