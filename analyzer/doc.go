// Package analyzer binds parsed statements to a catalog.
//
// Bind resolves every table and column of a sql.SelectStatement against a
// core.Database, checks aggregate and literal types, and returns an
// immutable Query carrying catalog-cased names. Violations are reported as
// *SemanticError naming the Rule that failed.
//
// Unqualified columns resolve against the FROM table first, then the JOIN
// table.
package analyzer
