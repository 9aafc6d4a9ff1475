package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/markdave123-py/quizsmith/internal/core"
	ingestion "github.com/markdave123-py/quizsmith/internal/core/ingestion_engine"
	objectclient "github.com/markdave123-py/quizsmith/internal/core/object-client"
	"github.com/markdave123-py/quizsmith/internal/models"
)

var driveID = regexp.MustCompile(`^[A-Za-z0-9_-]{10,}$`)

// SourceResolver turns string file references from a form into pipeline
// sources. Either client may be nil; references to an unconfigured store
// fail when loaded, like any other per-file failure.
type SourceResolver struct {
	drive   core.DriveClient
	objects core.ObjectClient
}

func NewSourceResolver(drive core.DriveClient, objects core.ObjectClient) *SourceResolver {
	return &SourceResolver{drive: drive, objects: objects}
}

// Resolve maps drive:<id>, a bare Drive file id, s3://bucket/key or a
// virtual-hosted S3 URL to a FileSource. accessToken is forwarded to Drive.
func (r *SourceResolver) Resolve(ref, accessToken string) ingestion.FileSource {
	ref = strings.TrimSpace(ref)

	if bucket, key, ok := objectclient.ParseLocation(ref); ok {
		return &remoteSource{name: ref, load: func(ctx context.Context) (*core.RemoteFile, error) {
			if r.objects == nil {
				return nil, fmt.Errorf("object storage is not configured")
			}
			return r.objects.GetFile(ctx, bucket, key)
		}}
	}

	id, explicit := strings.CutPrefix(ref, "drive:")
	if explicit || driveID.MatchString(id) {
		return &remoteSource{name: ref, load: func(ctx context.Context) (*core.RemoteFile, error) {
			if r.drive == nil {
				return nil, fmt.Errorf("google drive is not configured")
			}
			return r.drive.Download(ctx, id, accessToken)
		}}
	}

	return &remoteSource{name: ref, load: func(context.Context) (*core.RemoteFile, error) {
		return nil, fmt.Errorf("unrecognized file reference %q", ref)
	}}
}

type remoteSource struct {
	name string
	load func(ctx context.Context) (*core.RemoteFile, error)
}

func (s *remoteSource) Name() string { return s.name }

func (s *remoteSource) Load(ctx context.Context) (*models.UploadedFile, error) {
	f, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	name := f.Name
	if name == "" {
		name = s.name
	}
	return &models.UploadedFile{Name: name, MimeType: f.MimeType, Bytes: f.Data}, nil
}
