package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cloudy/internal/application/policy"
	"cloudy/internal/application/ports"
	"cloudy/internal/domain/apperr"
	"cloudy/internal/domain/file"
	"cloudy/internal/domain/query"
	"cloudy/internal/domain/user"
)

// DefaultMaxFileSize is 50MB.
const DefaultMaxFileSize = int64(50 << 20)

const dashboardPath = "/"

type FileService struct {
	logger         *zap.Logger
	fileRepository file.Repository
	userRepository user.Repository
	objects        ports.ObjectStore
	indexer        ports.IndexScheduler
	views          ports.ViewInvalidator
	mCounter       *prometheus.CounterVec
	maxFileSize    int64
}

func NewFileService(
	logger *zap.Logger,
	fileRepository file.Repository,
	userRepository user.Repository,
	objects ports.ObjectStore,
	indexer ports.IndexScheduler,
	views ports.ViewInvalidator,
	mCounter *prometheus.CounterVec,
	maxFileSize int64,
) ports.FileService {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &FileService{
		logger:         logger,
		fileRepository: fileRepository,
		userRepository: userRepository,
		objects:        objects,
		indexer:        indexer,
		views:          views,
		mCounter:       mCounter,
		maxFileSize:    maxFileSize,
	}
}

// Upload checks the size limit, stores the bytes and creates the metadata
// record for them.
func (fs *FileService) Upload(ctx context.Context, requester *user.User, in ports.Upload) (*file.File, error) {
	if requester == nil {
		return nil, apperr.ErrUnauthorized
	}
	if in.Size <= 0 {
		return nil, fmt.Errorf("%w: empty file %q", apperr.ErrInvalidInput, in.Name)
	}
	if in.Size > fs.maxFileSize {
		return nil, fmt.Errorf("%w: %q is %d bytes, limit is %d", apperr.ErrFileTooLarge, in.Name, in.Size, fs.maxFileSize)
	}

	name := cleanFileName(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: file name is required", apperr.ErrInvalidInput)
	}

	obj, err := fs.objects.Put(ctx, name, in.Size, in.Body)
	if err != nil {
		return nil, err
	}

	return fs.Create(ctx, requester.ID, requester.AccountID, obj)
}

// UploadBatch runs one upload pipeline per file concurrently. Outcomes are
// independent: a failed file never cancels its siblings.
func (fs *FileService) UploadBatch(ctx context.Context, requester *user.User, in []ports.Upload) []ports.UploadResult {
	out := make([]ports.UploadResult, len(in))

	// Per-file errors land in out; the group itself never fails.
	var g errgroup.Group
	for i := range in {
		i := i
		g.Go(func() error {
			f, err := fs.Upload(ctx, requester, in[i])
			out[i] = ports.UploadResult{Name: in[i].Name, File: f, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// Create persists the metadata record for an already uploaded object. When
// the write fails the object is removed again.
func (fs *FileService) Create(ctx context.Context, ownerID user.ID, accountID string, obj *ports.Object) (*file.File, error) {
	owner, err := fs.userRepository.FetchUserByID(ctx, ownerID)
	if err != nil {
		fs.rollbackObject(ctx, obj.ID, err)
		return nil, err
	}

	typ, ext := file.Classify(obj.Name)
	summary := owner.Summary()
	req := &file.File{
		Name:         obj.Name,
		Extension:    ext,
		Type:         typ,
		Size:         obj.Size,
		Owner:        file.Owner{ID: owner.ID},
		AccountID:    accountID,
		Users:        []string{owner.Email},
		BucketFileID: obj.ID,
		URL:          fs.objects.URL(obj.ID),
	}

	out, err := fs.fileRepository.CreateFile(ctx, req)
	if err != nil {
		fs.rollbackObject(ctx, obj.ID, err)
		return nil, err
	}
	out.Owner.Summary = &summary

	fs.indexer.ScheduleIndex(out)
	fs.invalidate(ctx, out.Type)
	fs.mCounter.WithLabelValues("files_created_total").Inc()

	return out, nil
}

func (fs *FileService) rollbackObject(ctx context.Context, objectID string, cause error) {
	// the request context may already be done; the object must go anyway
	if err := fs.objects.Delete(context.WithoutCancel(ctx), objectID); err != nil {
		fs.logger.Error("object rollback failed",
			zap.String("bucket_file_id", objectID),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	fs.logger.Warn("object rolled back after metadata failure",
		zap.String("bucket_file_id", objectID),
		zap.Error(cause),
	)
}

func (fs *FileService) Rename(ctx context.Context, fileID file.ID, requester *user.User, newBaseName string) (*file.File, error) {
	base := cleanFileName(newBaseName)
	if base == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}

	f, err := fs.fileRepository.FetchFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(requester, f) {
		return nil, fmt.Errorf("%w: only the owner can rename a file", apperr.ErrUnauthorized)
	}

	name := base
	if f.Extension != "" {
		name = base + "." + f.Extension
	}

	out, err := fs.fileRepository.UpdateFileName(ctx, f.ID, name, fs.objects.URL(f.BucketFileID))
	if err != nil {
		return nil, err
	}

	fs.invalidate(ctx, out.Type)
	fs.mCounter.WithLabelValues("files_renamed_total").Inc()

	return fs.resolveOwner(ctx, out, nil)
}

// UpdateSharedUsers replaces the share list. The owner's email is always kept.
func (fs *FileService) UpdateSharedUsers(ctx context.Context, fileID file.ID, requester *user.User, emails []string) (*file.File, error) {
	f, err := fs.fileRepository.FetchFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(requester, f) {
		return nil, fmt.Errorf("%w: only the owner can manage shared users", apperr.ErrUnauthorized)
	}

	owner, err := fs.userRepository.FetchUserByID(ctx, f.Owner.ID)
	if err != nil {
		return nil, err
	}

	out, err := fs.fileRepository.UpdateFileUsers(ctx, f.ID, withOwner(emails, owner.Email))
	if err != nil {
		return nil, err
	}

	fs.invalidate(ctx, out.Type)
	fs.mCounter.WithLabelValues("files_shared_total").Inc()

	summary := owner.Summary()
	out.Owner.Summary = &summary

	return out, nil
}

// Delete removes the file for its owner or drops a shared user from the
// share list. For owners the metadata delete is authoritative; object and
// index cleanup after it are best-effort.
func (fs *FileService) Delete(ctx context.Context, fileID file.ID, requester *user.User) (file.DeleteStatus, error) {
	f, err := fs.fileRepository.FetchFile(ctx, fileID)
	if err != nil {
		return "", err
	}

	switch policy.CanDelete(requester, f) {
	case policy.DeleteOwner:
		if err = fs.fileRepository.DeleteFile(ctx, f.ID); err != nil {
			return "", err
		}
		if err = fs.objects.Delete(ctx, f.BucketFileID); err != nil {
			fs.logger.Error("object cleanup failed",
				zap.Stringer("file_id", f.ID),
				zap.String("bucket_file_id", f.BucketFileID),
				zap.Error(err),
			)
		}
		fs.indexer.ScheduleRemove(f.ID)
		fs.invalidate(ctx, f.Type)
		fs.mCounter.WithLabelValues("files_deleted_total").Inc()

		return file.StatusDeleted, nil

	case policy.DeleteLeave:
		if _, err = fs.fileRepository.UpdateFileUsers(ctx, f.ID, without(f.Users, requester.Email)); err != nil {
			return "", err
		}
		fs.invalidate(ctx, f.Type)
		fs.mCounter.WithLabelValues("files_left_total").Inc()

		return file.StatusLeft, nil

	default:
		return "", fmt.Errorf("%w: not allowed to delete this file", apperr.ErrUnauthorized)
	}
}

func (fs *FileService) List(ctx context.Context, requester *user.User, spec query.Spec) (file.Files, error) {
	if requester == nil {
		return nil, apperr.ErrUnauthorized
	}

	fls, err := fs.fileRepository.FetchFiles(ctx, spec)
	if err != nil {
		return nil, err
	}

	cache := make(map[user.ID]*user.Summary)
	for i, f := range fls {
		if fls[i], err = fs.resolveOwner(ctx, f, cache); err != nil {
			return nil, err
		}
	}

	return fls, nil
}

// Apply dispatches a tagged action to the matching operation.
func (fs *FileService) Apply(ctx context.Context, requester *user.User, action file.Action) (*file.ActionResult, error) {
	switch a := action.(type) {
	case file.RenameAction:
		f, err := fs.Rename(ctx, a.FileID, requester, a.Name)
		if err != nil {
			return nil, err
		}
		return &file.ActionResult{File: f}, nil
	case file.ShareAction:
		f, err := fs.UpdateSharedUsers(ctx, a.FileID, requester, a.Emails)
		if err != nil {
			return nil, err
		}
		return &file.ActionResult{File: f}, nil
	case file.DeleteAction:
		st, err := fs.Delete(ctx, a.FileID, requester)
		if err != nil {
			return nil, err
		}
		return &file.ActionResult{Status: st}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported action %T", apperr.ErrInvalidInput, action)
	}
}

// resolveOwner attaches the owner summary for display. Records that already
// carry one are returned untouched. cache may be nil.
func (fs *FileService) resolveOwner(ctx context.Context, f *file.File, cache map[user.ID]*user.Summary) (*file.File, error) {
	if f.Owner.Resolved() {
		return f, nil
	}
	if s, ok := cache[f.Owner.ID]; ok {
		f.Owner.Summary = s
		return f, nil
	}

	u, err := fs.userRepository.FetchUserByID(ctx, f.Owner.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			fs.logger.Warn("file owner not found", zap.Stringer("file_id", f.ID), zap.Stringer("owner_id", f.Owner.ID))
			return f, nil
		}
		return nil, err
	}

	s := u.Summary()
	f.Owner.Summary = &s
	if cache != nil {
		cache[f.Owner.ID] = &s
	}

	return f, nil
}

func (fs *FileService) invalidate(ctx context.Context, t file.Type) {
	if err := fs.views.Invalidate(ctx, dashboardPath, file.ListingPath(t)); err != nil {
		fs.logger.Warn("view invalidation failed", zap.String("type", string(t)), zap.Error(err))
	}
}
