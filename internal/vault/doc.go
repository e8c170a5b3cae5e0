// Package vault knows the layout of a vault directory.
//
// A vault is a flat directory of independently encrypted files named
// <name>.<extension>. There is no index: listing the directory is the
// catalog. This package validates names, checks that the directory is
// usable, lists artifacts, and replaces files without leaving a
// half-written one behind.
package vault
