// Package filesystem wraps an afero.Fs with the operations the build driver
// performs on input and output trees, reporting failures as coded errors.
package filesystem
