package workspace

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-google-gateway/internal/errors"
	"google.golang.org/api/drive/v3"
)

const (
	OpListFiles    = "drive.files.list"
	OpDownloadFile = "drive.files.get"

	DefaultFilesQuery    = "trashed=false"
	DefaultFilesPageSize = 10

	fileListFields = "files(id, name, mimeType, modifiedTime, size)"
)

// ListFiles lists files matching query, or all non-trashed files when query is empty.
func (s *Session) ListFiles(ctx context.Context, query string, pageSize int64) (*drive.FileList, error) {
	if query == "" {
		query = DefaultFilesQuery
	}
	if pageSize <= 0 {
		pageSize = DefaultFilesPageSize
	}

	svc, err := drive.NewService(ctx, s.options(s.endpoints.Drive)...)
	if err != nil {
		return nil, errors.Upstream(OpListFiles, err)
	}

	files, err := svc.Files.List().
		PageSize(pageSize).
		Fields(fileListFields).
		Q(query).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Upstream(OpListFiles, err)
	}
	return files, nil
}

// DownloadFile fetches a file's content. The caller must close the body.
func (s *Session) DownloadFile(ctx context.Context, fileID string) (*http.Response, error) {
	if fileID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParameter, "fileId")
	}

	svc, err := drive.NewService(ctx, s.options(s.endpoints.Drive)...)
	if err != nil {
		return nil, errors.Upstream(OpDownloadFile, err)
	}

	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, errors.Upstream(OpDownloadFile, err)
	}
	return resp, nil
}
