package wiki

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/charles1614/deepwiki-sub003/internal/checksum"
	"github.com/charles1614/deepwiki-sub003/internal/storage"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// Uploads stores files in the object store and records them in the
// uploads table. Object keys are <wiki-slug>/<uuid>.
type Uploads struct {
	store   deepwiki.Store
	objects storage.ObjectStore
	sums    checksum.Calculator
	maxSize int64
}

func NewUploads(store deepwiki.Store, objects storage.ObjectStore) *Uploads {
	return &Uploads{
		store:   store,
		objects: objects,
		sums:    checksum.New(),
		maxSize: deepwiki.MaxUploadSizeBytes,
	}
}

const uploadColumns = `id, wiki_id, object_key, file_name, content_type, size_bytes, checksum, created_by, created_at`

func uploadDest(up *deepwiki.Upload) []any {
	return []any{&up.ID, &up.WikiID, &up.ObjectKey, &up.FileName, &up.ContentType,
		&up.SizeBytes, &up.Checksum, &up.CreatedBy, &up.CreatedAt}
}

// Put stores the file content and records the upload. The content is read
// fully to compute its checksum and enforce the size limit before anything
// touches the object store.
func (u *Uploads) Put(ctx context.Context, wiki *deepwiki.Wiki, fileName, contentType string, r io.Reader, authorID uuid.UUID) (*deepwiki.Upload, error) {
	if fileName == "" {
		return nil, fmt.Errorf("file name cannot be empty")
	}

	data, err := io.ReadAll(io.LimitReader(r, u.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > u.maxSize {
		return nil, fmt.Errorf("upload exceeds the %d byte limit", u.maxSize)
	}

	upload := &deepwiki.Upload{
		ID:          uuid.New(),
		WikiID:      wiki.ID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Checksum:    u.sums.CalculateRaw(data),
		CreatedBy:   authorID,
		CreatedAt:   time.Now().UTC(),
	}
	upload.ObjectKey = fmt.Sprintf("%s/%s", wiki.Slug, upload.ID)

	if _, err := u.objects.Put(ctx, upload.ObjectKey, contentType, bytes.NewReader(data)); err != nil {
		return nil, err
	}

	_, err = u.store.Exec(ctx,
		`INSERT INTO uploads (id, wiki_id, object_key, file_name, content_type, size_bytes, checksum, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		upload.ID, upload.WikiID, upload.ObjectKey, upload.FileName, upload.ContentType,
		upload.SizeBytes, upload.Checksum, upload.CreatedBy, upload.CreatedAt)
	if err != nil {
		// The uploads row is the source of truth; orphaned objects are
		// cheaper than records pointing at nothing.
		_ = u.objects.Delete(ctx, upload.ObjectKey)
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	return upload, nil
}

// Get returns the upload record and an open reader on its content.
func (u *Uploads) Get(ctx context.Context, wikiID, id uuid.UUID) (*deepwiki.Upload, io.ReadCloser, error) {
	var upload deepwiki.Upload
	err := u.store.QueryRow(ctx,
		`SELECT `+uploadColumns+` FROM uploads WHERE wiki_id = $1 AND id = $2`,
		uploadDest(&upload), wikiID, id)
	if err != nil {
		return nil, nil, err
	}

	r, _, err := u.objects.Get(ctx, upload.ObjectKey)
	if err != nil {
		return nil, nil, err
	}
	return &upload, r, nil
}

func (u *Uploads) List(ctx context.Context, wikiID uuid.UUID) ([]deepwiki.Upload, error) {
	rows, err := u.store.Query(ctx,
		`SELECT `+uploadColumns+` FROM uploads WHERE wiki_id = $1 ORDER BY created_at DESC`, wikiID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []deepwiki.Upload
	for rows.Next() {
		var upload deepwiki.Upload
		if err := rows.Scan(uploadDest(&upload)...); err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, rows.Err()
}

// Delete removes the record first, then the object. A missing object is
// tolerated; the record is what the wiki links against.
func (u *Uploads) Delete(ctx context.Context, wikiID, id uuid.UUID) error {
	var objectKey string
	err := u.store.QueryRow(ctx,
		`SELECT object_key FROM uploads WHERE wiki_id = $1 AND id = $2`,
		[]any{&objectKey}, wikiID, id)
	if err != nil {
		return err
	}

	if _, err := u.store.Exec(ctx, `DELETE FROM uploads WHERE id = $1`, id); err != nil {
		return err
	}

	if err := u.objects.Delete(ctx, objectKey); err != nil && err != storage.ErrObjectNotFound {
		return err
	}
	return nil
}
