package stemstorage

import (
	"encoding/json"
	"fmt"
	"github.com/cockroachdb/errors"
	stementity "github.com/veedubyou/spleeter-api/src/server/internal/stem/entity"
	"github.com/veedubyou/spleeter-api/src/shared/lib/cerr"
	"github.com/veedubyou/spleeter-api/src/shared/lib/errors/mark"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ManifestFilename starts with a dot, which no sanitized upload name
// (and so no stem directory) can
const ManifestFilename = ".manifest.json"

var downloadableExtensions = []string{".mp3", ".wav"}

// JobStore owns the on-disk layout of jobs:
//
//	<upload root>/<job id>_<filename>              the transient upload
//	<output root>/<job id>/<basename>/<stem>.<ext> the stems
//	<output root>/<job id>/.manifest.json          stem name to file mapping
//
// A job exists exactly as long as its output directory does.
type JobStore struct {
	uploadRoot string
	outputRoot string
}

func NewJobStore(uploadRoot string, outputRoot string) (JobStore, error) {
	absUploadRoot, err := filepath.Abs(uploadRoot)
	if err != nil {
		return JobStore{}, cerr.Field("upload_root", uploadRoot).
			Wrap(err).Error("Failed to convert upload root to absolute format")
	}

	absOutputRoot, err := filepath.Abs(outputRoot)
	if err != nil {
		return JobStore{}, cerr.Field("output_root", outputRoot).
			Wrap(err).Error("Failed to convert output root to absolute format")
	}

	for _, dir := range []string{absUploadRoot, absOutputRoot} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return JobStore{}, cerr.Field("dir", dir).Wrap(err).Error("Failed to create job store directory")
		}
	}

	return JobStore{
		uploadRoot: absUploadRoot,
		outputRoot: absOutputRoot,
	}, nil
}

func (j JobStore) UploadPath(jobID string, filename string) string {
	return filepath.Join(j.uploadRoot, jobID+"_"+filename)
}

func (j JobStore) JobDir(jobID string) string {
	return filepath.Join(j.outputRoot, jobID)
}

func (j JobStore) StemDir(jobID string, filename string) string {
	return filepath.Join(j.JobDir(jobID), BaseName(filename))
}

func (j JobStore) manifestPath(jobID string) string {
	return filepath.Join(j.JobDir(jobID), ManifestFilename)
}

func (j JobStore) JobExists(jobID string) (bool, error) {
	info, err := os.Stat(j.JobDir(jobID))
	switch {
	case err == nil:
		return info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, mark.Wrap(err, DefaultErrorMark, "Failed to stat job directory")
	}
}

func (j JobStore) SaveUpload(jobID string, filename string, content io.Reader) (string, error) {
	uploadPath := j.UploadPath(jobID, filename)
	errctx := cerr.Field("upload_path", uploadPath)

	file, err := os.OpenFile(uploadPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errctx.Wrap(mark.Wrap(err, DefaultErrorMark, "Failed to create upload file")).
			Error("Failed to save upload")
	}

	_, copyErr := io.Copy(file, content)
	closeErr := file.Close()
	if copyErr == nil {
		copyErr = closeErr
	}

	if copyErr != nil {
		_ = os.Remove(uploadPath)
		return "", errctx.Wrap(mark.Wrap(copyErr, DefaultErrorMark, "Failed to write upload file")).
			Error("Failed to save upload")
	}

	return uploadPath, nil
}

func (j JobStore) CreateJobDir(jobID string) error {
	if err := os.MkdirAll(j.JobDir(jobID), os.ModePerm); err != nil {
		return cerr.Field("job_id", jobID).
			Wrap(mark.Wrap(err, DefaultErrorMark, "Failed to create job output directory")).
			Error("Failed to create job")
	}

	return nil
}

// CollectStems lists the files in stemDir with the format's extension, sorted by name
func (j JobStore) CollectStems(jobID string, stemDir string, format stementity.Format) ([]stementity.Stem, error) {
	errctx := cerr.Field("job_id", jobID).Field("stem_dir", stemDir)

	dirEntries, err := os.ReadDir(stemDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errctx.Wrap(mark.Wrap(err, OutputDirMissingMark, "Separator produced no output directory")).
				Error(fmt.Sprintf("Output directory not found: %s", stemDir))
		}

		return nil, errctx.Wrap(mark.Wrap(err, DefaultErrorMark, "Failed to read output directory")).
			Error("Failed to collect stems")
	}

	stems := []stementity.Stem{}
	for _, dirEntry := range dirEntries {
		fileName := dirEntry.Name()
		if dirEntry.IsDir() || !strings.HasSuffix(fileName, format.Extension()) {
			continue
		}

		info, err := dirEntry.Info()
		if err != nil {
			return nil, errctx.Field("file_name", fileName).
				Wrap(mark.Wrap(err, DefaultErrorMark, "Failed to stat stem file")).
				Error("Failed to collect stems")
		}

		stemName := strings.TrimSuffix(fileName, format.Extension())
		stems = append(stems, stementity.Stem{
			Name:        stemName,
			Filename:    fileName,
			Path:        filepath.Join(stemDir, fileName),
			Size:        info.Size(),
			DownloadURL: stementity.DownloadURL(jobID, stemName),
		})
	}

	sort.Slice(stems, func(a, b int) bool {
		return stems[a].Name < stems[b].Name
	})

	return stems, nil
}

func (j JobStore) WriteManifest(manifest stementity.Manifest) error {
	errctx := cerr.Field("job_id", manifest.JobID)

	jsonBytes, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errctx.Wrap(err).Error("Failed to marshal manifest")
	}

	if err := os.WriteFile(j.manifestPath(manifest.JobID), jsonBytes, 0o644); err != nil {
		return errctx.Wrap(mark.Wrap(err, DefaultErrorMark, "Failed to write manifest")).
			Error("Failed to save manifest")
	}

	return nil
}

func NewManifest(jobDir string, result stementity.SeparationResult) (stementity.Manifest, error) {
	stemPaths := map[string]string{}
	for _, stem := range result.Stems {
		relPath, err := filepath.Rel(jobDir, stem.Path)
		if err != nil {
			return stementity.Manifest{}, cerr.Field("stem_path", stem.Path).
				Wrap(err).Error("Stem is not inside the job directory")
		}

		stemPaths[stem.Name] = filepath.ToSlash(relPath)
	}

	return stementity.Manifest{
		JobID:     result.JobID,
		Model:     result.Model,
		Format:    result.Format,
		CreatedAt: time.Now().UTC(),
		Stems:     stemPaths,
	}, nil
}

func (j JobStore) readManifest(jobID string) (stementity.Manifest, error) {
	jsonBytes, err := os.ReadFile(j.manifestPath(jobID))
	if err != nil {
		return stementity.Manifest{}, err
	}

	manifest := stementity.Manifest{}
	if err := json.Unmarshal(jsonBytes, &manifest); err != nil {
		return stementity.Manifest{}, mark.Wrap(err, DefaultErrorMark, "Manifest is malformed")
	}

	return manifest, nil
}

func (j JobStore) FindStem(jobID string, stemName string) (stementity.StemFile, error) {
	errctx := cerr.Field("job_id", jobID).Field("stem_name", stemName)

	exists, err := j.JobExists(jobID)
	if err != nil {
		return stementity.StemFile{}, errctx.Wrap(err).Error("Failed to look up job")
	}

	if !exists {
		return stementity.StemFile{}, errctx.Wrap(mark.Message(JobNotFoundMark, "Job directory does not exist")).
			Error("Failed to look up job")
	}

	manifest, err := j.readManifest(jobID)
	switch {
	case err == nil:
		return j.stemFromManifest(jobID, manifest, stemName)
	case errors.Is(err, fs.ErrNotExist):
		// jobs written before manifests existed
		return j.walkForStem(jobID, stemName)
	default:
		return stementity.StemFile{}, errctx.Wrap(mark.Wrap(err, DefaultErrorMark, "Failed to read manifest")).
			Error("Failed to look up stem")
	}
}

func (j JobStore) stemFromManifest(jobID string, manifest stementity.Manifest, stemName string) (stementity.StemFile, error) {
	errctx := cerr.Field("job_id", jobID).Field("stem_name", stemName)

	relPath, ok := manifest.Stems[stemName]
	if !ok {
		return stementity.StemFile{}, errctx.Wrap(mark.Message(StemNotFoundMark, "Stem is not in the manifest")).
			Error("Failed to look up stem")
	}

	jobDir := j.JobDir(jobID)
	stemPath := filepath.Join(jobDir, filepath.FromSlash(relPath))
	if !strings.HasPrefix(stemPath, jobDir+string(filepath.Separator)) {
		return stementity.StemFile{}, errctx.Field("rel_path", relPath).
			Wrap(mark.Message(StemNotFoundMark, "Manifest entry points outside the job")).
			Error("Failed to look up stem")
	}

	if _, err := os.Stat(stemPath); err != nil {
		return stementity.StemFile{}, errctx.Wrap(mark.Wrap(err, StemNotFoundMark, "Stem file is missing")).
			Error("Failed to look up stem")
	}

	return stementity.StemFile{
		Name:     stemName,
		Filename: filepath.Base(stemPath),
		Path:     stemPath,
	}, nil
}

// walkForStem matches on the exact stem name, the walk is lexical so the
// result is stable when several nested directories hold the same stem
func (j JobStore) walkForStem(jobID string, stemName string) (stementity.StemFile, error) {
	errctx := cerr.Field("job_id", jobID).Field("stem_name", stemName)

	var found *stementity.StemFile
	err := filepath.WalkDir(j.JobDir(jobID), func(path string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if dirEntry.IsDir() || !isDownloadable(dirEntry.Name()) {
			return nil
		}

		if BaseName(dirEntry.Name()) != stemName {
			return nil
		}

		found = &stementity.StemFile{
			Name:     stemName,
			Filename: dirEntry.Name(),
			Path:     path,
		}
		return fs.SkipAll
	})

	if err != nil {
		return stementity.StemFile{}, errctx.Wrap(mark.Wrap(err, DefaultErrorMark, "Failed to walk job directory")).
			Error("Failed to look up stem")
	}

	if found == nil {
		return stementity.StemFile{}, errctx.Wrap(mark.Message(StemNotFoundMark, "No file matches the stem name")).
			Error("Failed to look up stem")
	}

	return *found, nil
}

func isDownloadable(fileName string) bool {
	ext := filepath.Ext(fileName)
	for _, downloadable := range downloadableExtensions {
		if ext == downloadable {
			return true
		}
	}

	return false
}

func (j JobStore) RemoveUpload(uploadPath string) error {
	if err := os.Remove(uploadPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cerr.Field("upload_path", uploadPath).
			Wrap(mark.Wrap(err, DefaultErrorMark, "Failed to remove upload")).
			Error("Failed to clean up upload")
	}

	return nil
}

func (j JobStore) RemoveJob(jobID string) error {
	if err := os.RemoveAll(j.JobDir(jobID)); err != nil {
		return cerr.Field("job_id", jobID).
			Wrap(mark.Wrap(err, DefaultErrorMark, "Failed to remove job directory")).
			Error("Failed to clean up job")
	}

	return nil
}
