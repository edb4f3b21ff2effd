// Package textutil converts arbitrary file names into identifiers that are
// safe to use in generated code.
//
// Identifier produces PascalCase names for enum members and LowerIdentifier
// the camelCase variant for exported constants. Both split on any character
// that is not a letter or digit and title-case each word with
// golang.org/x/text/cases, so "arrow-down_24" becomes "ArrowDown24".
package textutil
