// Package shared holds helpers used by more than one package that belong
// to no single layer. Its testutil subpackage captures slog output so
// tests can assert on what the pipeline logged.
package shared
