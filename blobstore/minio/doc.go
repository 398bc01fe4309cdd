// Package minio provides a blobstore.Store using the MinIO client.
//
// It works with MinIO and other S3-compatible services (Ceph, Garage,
// SeaweedFS) and needs no AWS SDK configuration.
//
// # Basic Usage
//
//	store, err := minio.Dial(minio.Options{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	}, "bimgeo", "project-42/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := store.EnsureBucket(ctx); err != nil {
//	    log.Fatal(err)
//	}
package minio
