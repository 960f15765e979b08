// Package aggregates defines domain-facing aggregate contracts.
//
// Contracts avoid persistence and transport details; each write method is a
// semantic boundary whose invariants hold atomically.
package aggregates
