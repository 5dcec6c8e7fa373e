package journal

import (
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"hamstercal-go/internal/config"
	"hamstercal-go/internal/hamstercal"
)

// S3Journal stores reports as objects under <prefix>/reports/<runID>.json.
type S3Journal struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Journal creates an S3 journal from configuration. Credentials come
// from the config when both keys are set, otherwise from the default chain.
func NewS3Journal(ctx context.Context, cfg config.JournalConfig) (*S3Journal, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Journal{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.S3Bucket,
		prefix:   strings.Trim(cfg.S3Prefix, "/"),
	}, nil
}

func (j *S3Journal) reportsPrefix() string {
	return path.Join(j.prefix, "reports") + "/"
}

func (j *S3Journal) key(runID string) string {
	return j.reportsPrefix() + runID + reportExt
}

// PutReport uploads the report for runID.
func (j *S3Journal) PutReport(ctx context.Context, runID string, r io.Reader, size int64) error {
	counted := &countingReader{r: r}
	_, err := j.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(j.bucket),
		Key:           aws.String(j.key(runID)),
		Body:          counted,
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("uploading report %s: %w", runID, err)
	}
	if counted.n != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, counted.n)
	}
	return nil
}

// GetReport downloads the report for runID into w.
func (j *S3Journal) GetReport(ctx context.Context, runID string, w io.Writer) error {
	out, err := j.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(j.bucket),
		Key:    aws.String(j.key(runID)),
	})
	if err != nil {
		return fmt.Errorf("fetching report %s: %w", runID, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	return nil
}

// ListReports returns the stored run IDs in ascending order.
func (j *S3Journal) ListReports(ctx context.Context) ([]string, error) {
	prefix := j.reportsPrefix()
	paginator := s3.NewListObjectsV2Paginator(j.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(j.bucket),
		Prefix: aws.String(prefix),
	})

	var ids []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing reports: %w", err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if strings.Contains(name, "/") || !strings.HasSuffix(name, reportExt) {
				continue
			}
			ids = append(ids, strings.TrimSuffix(name, reportExt))
		}
	}
	slices.Sort(ids)
	return ids, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Compile-time check that S3Journal implements hamstercal.Journal interface
var _ hamstercal.Journal = (*S3Journal)(nil)
