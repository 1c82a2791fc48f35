// Package index provisions an Amazon Kendra index with its S3 data source
// and FAQ collection.
//
// Create issues a single CreateIndex call. PollCreate waits for the index to
// become ACTIVE and then creates the dependent resources in order: data
// source, sync job, FAQ. Requests that carry none of the dependent
// resource properties create only the index.
package index
