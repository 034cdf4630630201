package storage

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// S3 is an implementation of Store backed by AWS S3. Keys are used verbatim as
// object names, below an optional prefix.
type S3 struct {
	profile string
	region  string
	bucket  string
	prefix  string
	client  s3iface.S3API

	// Every put uploads the whole value, so uploads are throttled on our side.
	putLimiter *rate.Limiter
}

type S3Option func(*S3)

// WithS3Prefix sets a prefix for object names.
func WithS3Prefix(value string) S3Option {
	return func(s *S3) {
		s.prefix = value
	}
}

// WithS3PutRate limits puts to the given number per second. Zero or negative
// means no limit.
func WithS3PutRate(perSecond float64) S3Option {
	return func(s *S3) {
		if perSecond > 0 {
			s.putLimiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			s.putLimiter = nil
		}
	}
}

// WithS3Client sets the S3 client, instead of building one from the shared
// credentials profile on first use.
func WithS3Client(client s3iface.S3API) S3Option {
	return func(s *S3) {
		s.client = client
	}
}

func NewS3(profile, region, bucket string, opts ...S3Option) *S3 {
	s := &S3{
		profile: profile,
		region:  region,
		bucket:  bucket,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *S3) Get(key []byte) (value []byte, err error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	objectKey := s.objectKey(key)
	output, err := s.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("%q: %w", objectKey, ErrNotFound)
		}
		return nil, err
	}
	defer func() {
		if err := output.Body.Close(); err != nil {
			log.WithFields(log.Fields{
				"op":  "get",
				"key": objectKey,
			}).Warning("Could not close response body")
		}
	}()
	value, err = ioutil.ReadAll(output.Body)
	if err != nil {
		return nil, err
	}
	return nonNil(value), nil
}

func (s *S3) Put(key, value []byte) (err error) {
	if err = s.ensureClient(); err != nil {
		return err
	}
	if s.putLimiter != nil {
		time.Sleep(s.putLimiter.Reserve().Delay())
	}
	_, err = s.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (s *S3) objectKey(key []byte) string {
	if s.prefix == "" {
		return string(key)
	}
	return path.Join(s.prefix, string(key))
}

func (s *S3) ensureClient() error {
	if s.client != nil {
		return nil
	}
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(s.region),
		Credentials: credentials.NewSharedCredentials("", s.profile),
	})
	if err != nil {
		return err
	}
	s.client = s3.New(sess)
	return nil
}

func isS3NotFound(err error) bool {
	if rfErr, ok := err.(awserr.RequestFailure); ok && rfErr.StatusCode() == http.StatusNotFound {
		return true
	}
	if aErr, ok := err.(awserr.Error); ok && aErr.Code() == s3.ErrCodeNoSuchKey {
		return true
	}
	return false
}
