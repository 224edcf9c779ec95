package storage

import (
	"bytes"
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	api "github.com/weak-head/bin2hex64/api/v1"
	"github.com/weak-head/bin2hex64/internal/logger"
)

// minioStorage keeps binaries and hex images in S3 compatible buckets.
type minioStorage struct {
	config StorageConfig
	client *minio.Client

	log logger.Log
}

// NewMinioStorage creates a storage backed by the S3 compatible endpoint.
// The endpoint is not contacted until the first request.
func NewMinioStorage(conf StorageConfig, log logger.Log) (*minioStorage, error) {
	l := log.WithFields(logger.Fields{
		logger.FieldPackage:  "storage",
		logger.FieldFunction: "NewMinioStorage",
	})

	minioClient, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
		Region: conf.Region,
	})
	if err != nil {
		l.Error(err, "Failed to create a new minio client.")
		return nil, err
	}

	l.Debug("Created a new minio storage client.")

	return &minioStorage{
		config: conf,
		client: minioClient,
		log:    log.WithField(logger.FieldPackage, "storage"),
	}, nil
}

// Store uploads the object, creating the bucket first if configured to.
func (m *minioStorage) Store(
	ctx context.Context,
	loc *api.Location,
	objectBytes []byte,
	contentType string,
) error {
	log := m.log.WithFields(logger.Fields{
		logger.FieldFunction: "minioStorage.Store",
		"bucket":             loc.Bucket,
		"objectName":         loc.ObjectName,
	})

	if m.config.CreateBucketIfNotExist {
		if err := m.createBucket(ctx, loc.Bucket); err != nil {
			log.Error(err, "Failed to create a new bucket.")
			return err
		}
	}

	r := bytes.NewReader(objectBytes)
	_, err := m.client.PutObject(ctx, loc.Bucket, loc.ObjectName, r, r.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		log.Error(err, "Failed to store the object.")
		return err
	}

	log.Debug("Uploaded a new object to the storage.")
	return nil
}

// Retrieve downloads the whole object.
func (m *minioStorage) Retrieve(
	ctx context.Context,
	loc *api.Location,
) ([]byte, error) {
	log := m.log.WithFields(logger.Fields{
		logger.FieldFunction: "minioStorage.Retrieve",
		"bucket":             loc.Bucket,
		"objectName":         loc.ObjectName,
	})

	stream, err := m.client.GetObject(ctx, loc.Bucket, loc.ObjectName, minio.GetObjectOptions{})
	if err != nil {
		log.Error(err, "Failed to retrieve the object stream from the storage.")
		return nil, err
	}
	defer stream.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(stream); err != nil {
		log.Error(err, "Failed to read the object from the storage.")
		return nil, err
	}

	log.Debug("Retrieved the object from the storage.")
	return buf.Bytes(), nil
}

// createBucket
func (m *minioStorage) createBucket(ctx context.Context, bucket string) error {
	log := m.log.WithFields(logger.Fields{
		logger.FieldFunction: "minioStorage.createBucket",
		"bucket":             bucket,
	})

	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}

	if exists {
		log.Trace("Bucket already exist.")
		return nil
	}

	if err := m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: m.config.Region}); err != nil {
		return err
	}

	log.Info("A new bucket has been created.")
	return nil
}
