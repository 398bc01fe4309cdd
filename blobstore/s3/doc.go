// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.NewFromConfig(ctx, "my-bucket", "bimgeo/project-42")
//	if err != nil {
//	    return err
//	}
//	name, err := idx.Publish(ctx, store)
//
// S3 has no compare-and-swap, so concurrent publishers can race on the
// CURRENT pointer. DDBCommitStore moves that pointer into a DynamoDB table
// with conditional writes.
package s3
