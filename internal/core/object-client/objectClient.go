package objectclient

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/markdave123-py/quizsmith/internal/core"
)

// ErrNotAllowed is returned for objects outside the allow list.
var ErrNotAllowed = fmt.Errorf("%w: bucket or prefix not in S3_ALLOWED_BUCKETS", core.ErrSourceNotAllowed)

// Options configures the S3 client. Endpoint and PathStyle target
// S3-compatible stores such as R2 or MinIO. MaxBytes caps a single download.
// AllowedBuckets lists "bucket" or "bucket/prefix" entries the client may
// read; an empty list allows nothing.
type Options struct {
	AccessKey      string
	SecretKey      string
	Region         string
	Endpoint       string
	PathStyle      bool
	MaxBytes       int64
	AllowedBuckets []string
}

// allowList matches bucket/key pairs against "bucket" and "bucket/prefix" entries.
type allowList []string

func (l allowList) allows(bucket, key string) bool {
	for _, entry := range l {
		b, prefix, _ := strings.Cut(strings.TrimSpace(entry), "/")
		if b == bucket && strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// Configured reports whether enough settings are present to build a client.
func (o Options) Configured() bool {
	return o.Region != "" && ((o.AccessKey != "" && o.SecretKey != "") || o.Endpoint != "")
}

// ParseLocation splits an object reference into bucket and key. Accepted
// forms are s3://bucket/key and virtual-hosted URLs such as
// https://bucket.s3.us-east-2.amazonaws.com/path/to/file.pdf.
func ParseLocation(ref string) (bucket, key string, ok bool) {
	if rest, found := strings.CutPrefix(ref, "s3://"); found {
		bucket, key, _ = strings.Cut(rest, "/")
		return bucket, key, bucket != "" && key != ""
	}

	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "https" || !strings.Contains(u.Host, ".s3.") {
		return "", "", false
	}
	bucket, _, _ = strings.Cut(u.Host, ".")
	key = strings.TrimPrefix(u.Path, "/")
	return bucket, key, bucket != "" && key != ""
}
