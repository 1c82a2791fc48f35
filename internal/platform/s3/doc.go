// Package s3 wraps the AWS S3 client for the few object operations the
// provisioners and the answer path need.
//
// It reads bot definition documents, stores small JSON state blobs for the
// object-backed state store and presigns download links for source
// documents returned by search results. Missing objects surface as
// [ErrObjectNotFound] so callers can treat them as absent state.
package s3
