package aws

import (
	"building-planner/core"
	"building-planner/shapes"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const prefix = "drawings/"

// s3API is the part of *s3.Client the store uses.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type s3Store struct {
	s3Client s3API
	bucket   string
}

// NewDrawingStore creates an S3-backed store using the default AWS
// credential chain. Each drawing is one JSON object.
func NewDrawingStore(ctx context.Context, bucketName string) (core.DrawingStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return newStore(s3.NewFromConfig(cfg), bucketName), nil
}

func newStore(client s3API, bucketName string) *s3Store {
	return &s3Store{
		s3Client: client,
		bucket:   bucketName,
	}
}

func drawingKey(id string) (string, error) {
	// Ids are plain names, never paths.
	if id == "" || id == "." || id == ".." || path.Base(id) != id {
		return "", core.NotFoundError(id)
	}
	return prefix + id + ".json", nil
}

func (s *s3Store) read(ctx context.Context, id string) (*core.Drawing, error) {
	key, err := drawingKey(id)
	if err != nil {
		return nil, err
	}
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, core.NotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get drawing %s: %w", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read drawing data: %w", err)
	}

	var d core.Drawing
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal drawing data: %w", err)
	}
	if d.Shapes == nil {
		d.Shapes = []shapes.Shape{}
	}
	return &d, nil
}

func (s *s3Store) write(ctx context.Context, d *core.Drawing) error {
	key, err := drawingKey(d.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal drawing: %w", err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to save drawing %s: %w", d.ID, err)
	}
	return nil
}

func (s *s3Store) List(ctx context.Context) ([]*core.Drawing, error) {
	log := logrus.WithField("bucket", s.bucket)

	drawings := []*core.Drawing{}
	paginator := s3.NewListObjectsV2Paginator(s.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to list drawings")
			return nil, fmt.Errorf("failed to list drawings: %w", err)
		}
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			id := strings.TrimSuffix(strings.TrimPrefix(key, prefix), ".json")
			d, err := s.read(ctx, id)
			if err != nil {
				log.WithError(err).Warnf("Failed to read drawing object %s, skipping", key)
				continue
			}
			d.Shapes = nil
			drawings = append(drawings, d)
		}
	}
	core.SortByUpdated(drawings)

	log.Infof("Listed %d drawings", len(drawings))
	return drawings, nil
}

func (s *s3Store) Get(ctx context.Context, id string) (*core.Drawing, error) {
	log := logrus.WithField("drawing_id", id)
	d, err := s.read(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to retrieve drawing")
		return nil, err
	}
	log.Info("Drawing retrieved successfully")
	return d, nil
}

func (s *s3Store) Create(ctx context.Context, name, description string) (*core.Drawing, error) {
	if err := core.ValidateName(name); err != nil {
		return nil, err
	}

	now := time.Now()
	d := &core.Drawing{
		ID:          ulid.Make().String(),
		Name:        name,
		Description: description,
		Shapes:      []shapes.Shape{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.write(ctx, d); err != nil {
		logrus.WithError(err).WithField("drawing_id", d.ID).Error("Failed to create drawing")
		return nil, err
	}

	logrus.WithField("drawing_id", d.ID).Info("Drawing created successfully")
	return d, nil
}

// Save is a read-modify-write of the whole object; concurrent saves of the
// same drawing are last-writer-wins.
func (s *s3Store) Save(ctx context.Context, id string, name, description string, list []shapes.Shape) error {
	log := logrus.WithFields(logrus.Fields{
		"drawing_id":  id,
		"shape_count": len(list),
	})

	d, err := s.read(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Cannot save drawing")
		return err
	}
	d.Name = name
	d.Description = description
	if list != nil {
		d.Shapes = list
	}
	d.UpdatedAt = time.Now()

	if err := s.write(ctx, d); err != nil {
		log.WithError(err).Error("Failed to save drawing")
		return err
	}
	log.Info("Drawing saved successfully")
	return nil
}

func (s *s3Store) Delete(ctx context.Context, id string) error {
	// S3 deletes are idempotent, so check existence first to report unknown ids.
	if _, err := s.read(ctx, id); err != nil {
		return err
	}
	key, _ := drawingKey(id)

	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete drawing %s: %w", id, err)
	}
	logrus.WithField("drawing_id", id).Info("Drawing deleted successfully")
	return nil
}
