// Package attractions manages tourist attraction records with an optional
// uploaded image each.
//
// The Service interface composes a Repository (memory, MongoDB, Postgres or
// Redis, under repo/) with a BlobStore for images (memory, filesystem or S3,
// under storage/). The HTTP surface lives in the api subpackage and
// environment driven wiring in config.
//
// Upload Policy
//
// Images arrive under the attractionImage multipart field. Only image/jpeg
// and image/png are stored; other types are skipped and the record is still
// created. Files over MaxImageBytes fail the request before anything is
// persisted. Stored names are the UTC upload time with millisecond precision
// followed by the base name of the original file.
package attractions
