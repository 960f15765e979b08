// Package aggregates implements the write side of the todo domain.
//
// Each exported constructor returns a domain aggregate contract backed by the
// table repos in internal/data/repos/todo. Every write opens exactly one
// transaction through a TxRunner; repos only ever see the dbctx.Context handed
// to them.
package aggregates
