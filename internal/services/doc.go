// Package services groups the clipo service wrappers. Each subpackage covers
// one slice of the API surface (account, studio, processing, library,
// billing) and goes through the shared api.Client, so authentication and
// retry behavior are identical everywhere.
package services
