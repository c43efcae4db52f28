package stemusecase

import (
	"context"
	"fmt"
	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/google/uuid"
	"github.com/veedubyou/spleeter-api/src/server/internal/engine"
	"github.com/veedubyou/spleeter-api/src/server/internal/errors/api"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/entity"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/errors"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/notify"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/storage"
	"github.com/veedubyou/spleeter-api/src/shared/lib/cerr"
	"io"
	"strings"
	"time"
)

type SeparationObserver interface {
	ObserveSeparation(model stementity.Model, format stementity.Format, elapsed time.Duration, succeeded bool)
}

type SeparateRequest struct {
	Filename string
	Model    string
	Format   string
	File     io.Reader
}

type validatedRequest struct {
	filename string
	model    stementity.Model
	format   stementity.Format
}

type Usecase struct {
	jobStore stemstorage.JobStore
	engines  *engine.Cache
	notifier stemnotify.Notifier
	observer SeparationObserver
}

func NewUsecase(jobStore stemstorage.JobStore, engines *engine.Cache, notifier stemnotify.Notifier, observer SeparationObserver) Usecase {
	return Usecase{
		jobStore: jobStore,
		engines:  engines,
		notifier: notifier,
		observer: observer,
	}
}

func validate(request SeparateRequest) (validatedRequest, *api.Error) {
	if request.Filename == "" {
		return validatedRequest{}, api.CommitError(errors.New("Uploaded file has an empty filename"),
			stemerrors.EmptyFilenameCode,
			"Empty filename")
	}

	allowed := fmt.Sprintf("File type not allowed. Allowed: %s", strings.Join(stementity.AllowedExtensions, ", "))

	if !stementity.IsAllowedFilename(request.Filename) {
		return validatedRequest{}, api.CommitError(errors.Newf("Extension of %q is not allowed", request.Filename),
			stemerrors.FileTypeNotAllowedCode,
			allowed)
	}

	model, err := stementity.ParseModel(request.Model)
	if err != nil {
		return validatedRequest{}, api.CommitError(err,
			stemerrors.InvalidModelCode,
			fmt.Sprintf("Invalid model. Choose from: %s", joinModels(stementity.ValidModels())))
	}

	format, err := stementity.ParseFormat(request.Format)
	if err != nil {
		return validatedRequest{}, api.CommitError(err,
			stemerrors.InvalidFormatCode,
			"Invalid format. Choose mp3 or wav")
	}

	// sanitizing can strip a name down to nothing, or strip the extension
	sanitized := stemstorage.SanitizeFilename(request.Filename)
	if !stementity.IsAllowedFilename(sanitized) || stemstorage.BaseName(sanitized) == "" {
		return validatedRequest{}, api.CommitError(errors.Newf("Filename %q has no usable name once sanitized", request.Filename),
			stemerrors.FileTypeNotAllowedCode,
			allowed)
	}

	return validatedRequest{
		filename: sanitized,
		model:    model,
		format:   format,
	}, nil
}

func joinModels(models []stementity.Model) string {
	names := make([]string, len(models))
	for i, model := range models {
		names[i] = string(model)
	}

	return strings.Join(names, ", ")
}

func (u Usecase) Separate(ctx context.Context, request SeparateRequest) (stementity.SeparationResult, *api.Error) {
	validated, apiErr := validate(request)
	if apiErr != nil {
		return stementity.SeparationResult{}, apiErr
	}

	jobID := uuid.NewString()
	errctx := cerr.Fields(cerr.F{
		"job_id":   jobID,
		"filename": validated.filename,
		"model":    validated.model,
		"format":   validated.format,
	})

	logger := log.WithFields(log.Fields{
		"jobID":    jobID,
		"filename": validated.filename,
		"model":    validated.model,
	})

	uploadPath, err := u.jobStore.SaveUpload(jobID, validated.filename, request.File)
	if err != nil {
		return stementity.SeparationResult{}, separationFailed(errctx.Wrap(err).Error("Failed to save upload"))
	}

	logger.Info("Processing file")

	result, err := u.separate(ctx, jobID, uploadPath, validated)
	if err == nil {
		err = u.jobStore.RemoveUpload(uploadPath)
	}

	if err != nil {
		u.discardJob(jobID, uploadPath)
		return stementity.SeparationResult{}, separationFailed(errctx.Wrap(err).Error("Failed to separate file"))
	}

	logger.WithField("stems", result.TotalStems).Info("Separation completed")
	u.notifier.StemsSeparated(result)

	return result, nil
}

func separationFailed(err error) *api.Error {
	return api.CommitError(err, stemerrors.SeparationFailedCode, err.Error())
}

func (u Usecase) separate(ctx context.Context, jobID string, uploadPath string, request validatedRequest) (stementity.SeparationResult, error) {
	if err := u.jobStore.CreateJobDir(jobID); err != nil {
		return stementity.SeparationResult{}, err
	}

	separator, err := u.engines.Get(ctx, request.model)
	if err != nil {
		return stementity.SeparationResult{}, errors.Wrap(err, "Failed to get separator")
	}

	stemDir := u.jobStore.StemDir(jobID, request.filename)

	start := time.Now()
	err = separator.SeparateToFile(ctx, engine.Request{
		InputPath: uploadPath,
		StemDir:   stemDir,
		Codec:     request.format,
		Bitrate:   request.format.Bitrate(),
	})
	if u.observer != nil {
		u.observer.ObserveSeparation(request.model, request.format, time.Since(start), err == nil)
	}

	if err != nil {
		return stementity.SeparationResult{}, errors.Wrap(err, "Separator failed")
	}

	stems, err := u.jobStore.CollectStems(jobID, stemDir, request.format)
	if err != nil {
		return stementity.SeparationResult{}, err
	}

	if len(stems) == 0 {
		return stementity.SeparationResult{}, errors.Newf("No %s stems were produced in %s", request.format, stemDir)
	}

	result := stementity.NewSeparationResult(jobID, request.model, request.format, stems)

	manifest, err := stemstorage.NewManifest(u.jobStore.JobDir(jobID), result)
	if err != nil {
		return stementity.SeparationResult{}, err
	}

	if err := u.jobStore.WriteManifest(manifest); err != nil {
		return stementity.SeparationResult{}, err
	}

	return result, nil
}

// discardJob runs on an already failing path, so its own failures are
// logged and dropped
func (u Usecase) discardJob(jobID string, uploadPath string) {
	logger := log.WithField("jobID", jobID)

	if err := u.jobStore.RemoveUpload(uploadPath); err != nil {
		logger.WithError(err).Warn("Failed to remove upload while discarding job")
	}

	exists, err := u.jobStore.JobExists(jobID)
	if err != nil {
		logger.WithError(err).Warn("Failed to check job directory while discarding job")
		return
	}

	if !exists {
		return
	}

	if err := u.jobStore.RemoveJob(jobID); err != nil {
		logger.WithError(err).Warn("Failed to remove job directory while discarding job")
	}
}

func isJobID(jobID string) bool {
	_, err := uuid.Parse(jobID)
	return err == nil
}

func jobNotFound(jobID string) *api.Error {
	return api.CommitError(cerr.Field("job_id", jobID).Error("Job ID does not refer to a job"),
		stemerrors.JobNotFoundCode,
		"Job not found")
}

func (u Usecase) FindStem(jobID string, stemName string) (stementity.StemFile, *api.Error) {
	if !isJobID(jobID) {
		return stementity.StemFile{}, jobNotFound(jobID)
	}

	stemFile, err := u.jobStore.FindStem(jobID, stemName)
	if err != nil {
		err = errors.Wrap(err, "Failed to find stem")
		switch {
		case markers.Is(err, stemstorage.JobNotFoundMark):
			return stementity.StemFile{}, api.CommitError(err,
				stemerrors.JobNotFoundCode,
				"Job not found")

		case markers.Is(err, stemstorage.StemNotFoundMark):
			return stementity.StemFile{}, api.CommitError(err,
				stemerrors.StemNotFoundCode,
				"Stem not found")

		default:
			return stementity.StemFile{}, api.CommitError(err,
				api.DefaultErrorCode,
				"Unknown error: Failed to look up the stem")
		}
	}

	return stemFile, nil
}

func (u Usecase) Cleanup(jobID string) *api.Error {
	if !isJobID(jobID) {
		return jobNotFound(jobID)
	}

	exists, err := u.jobStore.JobExists(jobID)
	if err != nil {
		return api.CommitError(err, stemerrors.CleanupFailedCode, err.Error())
	}

	if !exists {
		return jobNotFound(jobID)
	}

	if err := u.jobStore.RemoveJob(jobID); err != nil {
		return api.CommitError(err, stemerrors.CleanupFailedCode, err.Error())
	}

	log.WithField("jobID", jobID).Info("Cleaned up job")
	u.notifier.JobCleanedUp(jobID)

	return nil
}

func (u Usecase) LoadedModels() []stementity.Model {
	return u.engines.Loaded()
}
