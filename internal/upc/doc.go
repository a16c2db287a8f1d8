// Package upc resolves UPC/EAN barcodes to canonical product information.
//
// Providers are tried in a fixed priority order; the first non-empty answer
// wins and is cached in memory for the rest of the process. Provider
// failures are treated as "not found" so a flaky database never blocks the
// chain.
package upc
