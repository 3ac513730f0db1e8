// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("searches/run-1/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
// Uploads go through the SDK's multipart upload manager, so result files of any
// size stream without being buffered whole.
//
// # Commit pointer
//
// S3 has no compare-and-swap, so two archivers writing the same prefix could
// both believe they published the latest snapshot. CommitStore keeps the pointer
// in DynamoDB and commits it with a conditional write:
//
//	aws dynamodb create-table \
//	  --table-name prodsearch-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package s3
