package chunkstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"audioblog-go/internal/logger"
)

// S3Store keeps chunks under uploads/<uploadID>/chunk_<index> in one bucket.
// Used when uploads must survive hopping between stateless app instances.
type S3Store struct {
	client *s3.Client
	bucket string
	log    *logger.Logger
}

func NewS3Store(ctx context.Context, bucket string, log *logger.Logger) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: no bucket configured", ErrUnavailable)
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg), bucket: bucket, log: log}, nil
}

func (s *S3Store) prefix(uploadID string) string {
	return fmt.Sprintf("uploads/%s/", uploadID)
}

func (s *S3Store) key(uploadID string, index int) string {
	return fmt.Sprintf("uploads/%s/chunk_%d", uploadID, index)
}

func (s *S3Store) Put(ctx context.Context, uploadID string, index int, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(uploadID, index)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, uploadID string) ([]Ref, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix(uploadID)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var refs []Ref
	for _, obj := range out.Contents {
		idx, ok := keyIndex(*obj.Key)
		if !ok {
			continue
		}
		refs = append(refs, Ref{Index: idx, Key: *obj.Key, Size: aws.ToInt64(obj.Size)})
	}

	// S3 lists keys lexicographically, so chunk_10 arrives before chunk_2
	sort.Slice(refs, func(i, j int) bool { return refs[i].Index < refs[j].Index })
	return refs, nil
}

func (s *S3Store) Get(ctx context.Context, uploadID string, index int) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(uploadID, index)),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound") {
			return nil, &MissingError{UploadID: uploadID, Index: index}
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

func (s *S3Store) Delete(ctx context.Context, uploadID string, index int) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(uploadID, index)),
	})
	if err != nil {
		s.log.WithError(err).WithField("upload_id", uploadID).Warn("chunk delete failed")
	}
	return err
}

func (s *S3Store) DeleteAll(ctx context.Context, uploadID string) error {
	refs, err := s.List(ctx, uploadID)
	if err != nil {
		s.log.WithError(err).WithField("upload_id", uploadID).Warn("chunk cleanup list failed")
		return err
	}
	if len(refs) == 0 {
		return nil
	}

	objects := make([]s3types.ObjectIdentifier, 0, len(refs))
	for _, r := range refs {
		objects = append(objects, s3types.ObjectIdentifier{Key: aws.String(r.Key)})
	}
	_, err = s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &s3types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		s.log.WithError(err).WithField("upload_id", uploadID).Warn("chunk cleanup failed")
	}
	return err
}

// keyIndex extracts n from ".../chunk_<n>".
func keyIndex(key string) (int, bool) {
	_, rest, ok := strings.Cut(key, "chunk_")
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return idx, true
}
