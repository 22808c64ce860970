// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and any other S3-compatible storage (Ceph, Garage,
// SeaweedFS, AWS S3).
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	src := minioblob.NewStore(client, "photos", "raw/")
//	dst := minioblob.NewStore(client, "photos", "indexed/")
//	report, err := batch.Run(ctx, src, dst, job)
package minio
