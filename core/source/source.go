package source

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"aero-importer/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Scheme prefixes a bucket location.
const Scheme = "s3://"

var (
	// ErrNoMember is returned when an archive holds nothing the selector accepts.
	ErrNoMember = errors.New("archive has no matching member")
	// ErrTooLarge is returned when a bucket archive exceeds MaxArchiveMB.
	ErrTooLarge = errors.New("archive exceeds size limit")
	// ErrNoStorage is returned for bucket locations when no storage client is configured.
	ErrNoStorage = errors.New("storage client not configured")
)

// Selector picks the archive member to read from a list of member names.
type Selector func(names []string) (string, bool)

// Location addresses a snapshot. An empty Bucket means a local path.
type Location struct {
	Bucket string
	Path   string
}

// ParseLocation reads "s3://bucket/key" as a bucket location and anything
// else as a local path. When bucket is set, plain paths resolve inside it.
func ParseLocation(raw, bucket string) Location {
	if rest, ok := strings.CutPrefix(raw, Scheme); ok {
		b, key, _ := strings.Cut(rest, "/")
		return Location{Bucket: b, Path: key}
	}
	return Location{Bucket: bucket, Path: raw}
}

// IsZero reports whether the location is empty.
func (l Location) IsZero() bool { return l.Path == "" }

// IsBucket reports whether the location names a bucket object.
func (l Location) IsBucket() bool { return l.Bucket != "" }

func (l Location) String() string {
	if l.IsBucket() {
		return Scheme + l.Bucket + "/" + l.Path
	}
	return l.Path
}

// Stream is an opened snapshot. Name is the file or archive member read.
type Stream struct {
	io.ReadCloser
	Name string
}

// Opener resolves locations into streams.
type Opener struct {
	client storage.Client
	cfg    Config
	logger *zap.Logger
}

// NewOpener creates an opener. client may be nil when only local paths are used.
func NewOpener(client storage.Client, cfg Config, logger *zap.Logger) *Opener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opener{client: client, cfg: cfg, logger: logger}
}

// Open returns the stream at loc. Zip archives are unpacked with pick.
func (o *Opener) Open(ctx context.Context, loc Location, pick Selector) (*Stream, error) {
	if loc.IsZero() {
		return nil, errors.New("empty location")
	}
	if loc.IsBucket() {
		return o.openObject(ctx, loc, pick)
	}
	return o.openFile(loc.Path, pick)
}

func isZip(name string) bool {
	return strings.EqualFold(path.Ext(name), ".zip")
}

func (o *Opener) openFile(name string, pick Selector) (*Stream, error) {
	if !isZip(name) {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		return &Stream{ReadCloser: f, Name: name}, nil
	}

	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", name, err)
	}
	rc, member, err := openMember(&zr.Reader, pick)
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	o.logger.Debug("Opened archive member", zap.String("archive", name), zap.String("member", member))
	return &Stream{ReadCloser: &chained{ReadCloser: rc, outer: zr}, Name: member}, nil
}

func (o *Opener) openObject(ctx context.Context, loc Location, pick Selector) (*Stream, error) {
	if o.client == nil {
		return nil, ErrNoStorage
	}
	obj, err := o.client.GetObject(ctx, loc.Bucket, loc.Path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", loc, err)
	}
	if !isZip(loc.Path) {
		return &Stream{ReadCloser: obj, Name: loc.String()}, nil
	}
	defer obj.Close()

	limit := int64(o.cfg.MaxArchiveMB) << 20
	if limit <= 0 {
		limit = 512 << 20
	}
	data, err := io.ReadAll(io.LimitReader(obj, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w", loc, ErrTooLarge)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", loc, err)
	}
	rc, member, err := openMember(zr, pick)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc, err)
	}
	o.logger.Debug("Opened archive member", zap.String("archive", loc.String()), zap.String("member", member))
	return &Stream{ReadCloser: rc, Name: member}, nil
}

func openMember(zr *zip.Reader, pick Selector) (io.ReadCloser, string, error) {
	if pick == nil {
		return nil, "", ErrNoMember
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	name, ok := pick(names)
	if !ok {
		return nil, "", ErrNoMember
	}
	rc, err := zr.Open(name)
	if err != nil {
		return nil, "", err
	}
	return rc, name, nil
}

// chained closes the member first, then the archive holding it.
type chained struct {
	io.ReadCloser
	outer io.Closer
}

func (c *chained) Close() error {
	return errors.Join(c.ReadCloser.Close(), c.outer.Close())
}

// List returns the sorted keys under prefix in bucket whose name ends in
// one of exts. An empty exts matches every object.
func (o *Opener) List(ctx context.Context, bucket, prefix string, exts ...string) ([]string, error) {
	if o.client == nil {
		return nil, ErrNoStorage
	}
	exists, err := o.client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	var keys []string
	for obj := range o.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", bucket, obj.Err)
		}
		if matchExt(obj.Key, exts) {
			keys = append(keys, obj.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func matchExt(key string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(key), ext) {
			return true
		}
	}
	return false
}
