package cas

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sony/gobreaker"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// ObjectStoreBackend stores blobs in an S3-compatible bucket, grounded on
// the original server's cas/storage/s3.py S3Storage: object keys are
// digest.hash + "_" + size_bytes. The configured bucket name is used as
// given for every blob; no "{digest}" placeholder in it is substituted.
type ObjectStoreBackend struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	breaker  *gobreaker.CircuitBreaker
}

// NewObjectStoreBackend builds an ObjectStoreBackend against bucket, using
// sess for credentials/region. A gobreaker.CircuitBreaker wraps every
// call so a failing S3 endpoint trips open quickly instead of letting
// every CAS request queue up behind slow timeouts.
func NewObjectStoreBackend(sess *session.Session, bucket string) *ObjectStoreBackend {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "cas-objectstore",
		MaxRequests: 4,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
	return &ObjectStoreBackend{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   bucket,
		breaker:  cb,
	}
}

func objectKey(digest pb.Digest) string {
	return fmt.Sprintf("%s_%d", digest.Hash, digest.SizeBytes)
}

func (b *ObjectStoreBackend) Has(ctx context.Context, digest pb.Digest) (bool, error) {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return b.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(objectKey(digest)),
		})
	})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, bgerrors.BackendUnavailable("s3 head object", err)
	}
	return true, nil
}

func (b *ObjectStoreBackend) Get(ctx context.Context, digest pb.Digest) ([]byte, error) {
	out, err := b.breaker.Execute(func() (interface{}, error) {
		return b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(objectKey(digest)),
		})
	})
	if isNotFound(err) {
		return nil, bgerrors.NotFound("blob not found: " + digest.Hash)
	}
	if err != nil {
		return nil, bgerrors.BackendUnavailable("s3 get object", err)
	}
	obj := out.(*s3.GetObjectOutput)
	defer obj.Body.Close()
	return io.ReadAll(obj.Body)
}

func (b *ObjectStoreBackend) Put(ctx context.Context, digest pb.Digest, data []byte) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return b.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(objectKey(digest)),
			Body:   bytes.NewReader(data),
		})
	})
	if err != nil {
		return bgerrors.BackendUnavailable("s3 upload", err)
	}
	return nil
}

func (b *ObjectStoreBackend) Delete(ctx context.Context, digest pb.Digest) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return b.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(objectKey(digest)),
		})
	})
	if err != nil && !isNotFound(err) {
		return bgerrors.BackendUnavailable("s3 delete object", err)
	}
	return nil
}

func (b *ObjectStoreBackend) MissingBlobs(ctx context.Context, digests []pb.Digest) ([]pb.Digest, error) {
	var missing []pb.Digest
	for _, d := range digests {
		ok, err := b.Has(ctx, d)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, d)
		}
	}
	return missing, nil
}

func (b *ObjectStoreBackend) Reader(ctx context.Context, digest pb.Digest) (io.ReadCloser, error) {
	data, err := b.Get(ctx, digest)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Writer buffers the blob in memory and uploads on Close; S3 multipart
// upload semantics make true streaming writes awkward to expose through
// an io.WriteCloser, and CAS blobs are bounded by MaxBatchTotalSizeBytes
// in the batch path regardless.
func (b *ObjectStoreBackend) Writer(ctx context.Context, digest pb.Digest) (io.WriteCloser, error) {
	return &objectStoreWriter{ctx: ctx, backend: b, digest: digest}, nil
}

type objectStoreWriter struct {
	ctx     context.Context
	backend *ObjectStoreBackend
	digest  pb.Digest
	buf     bytes.Buffer
}

func (w *objectStoreWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *objectStoreWriter) Close() error {
	return w.backend.Put(w.ctx, w.digest, w.buf.Bytes())
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound"
	}
	return false
}
