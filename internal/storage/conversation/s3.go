package conversation

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"

	"github.com/zhouzirui/digital-twin/backend/internal/model/chat"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Store keeps one object per session in a bucket, keyed "<session>.json".
type S3Store struct {
	client S3API
	bucket string
	region string
}

// NewS3Store binds a client to a bucket. region is only consulted when the
// bucket has to be created.
func NewS3Store(client S3API, bucket, region string) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region}
}

func (s *S3Store) Name() string { return "s3" }

// Bucket returns the bucket name.
func (s *S3Store) Bucket() string { return s.bucket }

func (s *S3Store) Load(ctx context.Context, sessionID string) ([]chat.Message, error) {
	if err := checkSessionID(s.Name(), "load", sessionID); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(Key(sessionID)),
	})
	if err != nil {
		if isNotFound(err) {
			return []chat.Message{}, nil
		}
		return nil, storageError(s.Name(), "load", sessionID, errors.Wrap(err, "get object"))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, storageError(s.Name(), "load", sessionID, errors.Wrap(err, "read object body"))
	}

	messages, err := Decode(data)
	if err != nil {
		return nil, storageError(s.Name(), "load", sessionID, err)
	}
	return messages, nil
}

func (s *S3Store) Save(ctx context.Context, sessionID string, transcript []chat.Message) error {
	if err := checkSessionID(s.Name(), "save", sessionID); err != nil {
		return err
	}

	data, err := Encode(transcript)
	if err != nil {
		return storageError(s.Name(), "save", sessionID, err)
	}

	err = s.put(ctx, sessionID, data)
	if err != nil && isNoSuchBucket(err) {
		if cerr := s.createBucket(ctx); cerr != nil {
			return storageError(s.Name(), "save", sessionID, errors.Wrapf(cerr, "create bucket %s", s.bucket))
		}
		err = s.put(ctx, sessionID, data)
	}
	if err != nil {
		return storageError(s.Name(), "save", sessionID, errors.Wrap(err, "put object"))
	}
	return nil
}

func (s *S3Store) put(ctx context.Context, sessionID string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(Key(sessionID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (s *S3Store) createBucket(ctx context.Context) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	// us-east-1 rejects an explicit location constraint.
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}
	_, err := s.client.CreateBucket(ctx, input)
	return err
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	return hasErrorCode(err, "NoSuchKey", "NotFound")
}

func isNoSuchBucket(err error) bool {
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return true
	}
	return hasErrorCode(err, "NoSuchBucket")
}

func hasErrorCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.ErrorCode() == code {
			return true
		}
	}
	return false
}
