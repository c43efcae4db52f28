package engine

import (
	"context"
	"fmt"
	"github.com/apex/log"
	stementity "github.com/veedubyou/spleeter-api/src/server/internal/stem/entity"
	"github.com/veedubyou/spleeter-api/src/shared/lib/cerr"
	"github.com/veedubyou/spleeter-api/src/shared/lib/executor"
	"path/filepath"
)

var _ Separator = SpleeterSeparator{}

func NewSpleeterFactory(spleeterBinPath string, executor executor.Executor) Factory {
	return func(_ context.Context, model stementity.Model) (Separator, error) {
		return NewSpleeterSeparator(spleeterBinPath, model, executor)
	}
}

func NewSpleeterSeparator(spleeterBinPath string, model stementity.Model, executor executor.Executor) (SpleeterSeparator, error) {
	errctx := cerr.Field("spleeter_bin_path", spleeterBinPath).Field("model", model)

	if model.Stems() == nil {
		return SpleeterSeparator{}, errctx.Error("Invalid model passed in!")
	}

	resolvedBinPath, err := executor.LookPath(spleeterBinPath)
	if err != nil {
		return SpleeterSeparator{}, errctx.Wrap(err).Error("Failed to locate the spleeter binary")
	}

	log.WithFields(log.Fields{
		"spleeterBinPath": resolvedBinPath,
		"model":           model,
	}).Info("Initialized spleeter separator")

	return SpleeterSeparator{
		spleeterBinPath: resolvedBinPath,
		model:           model,
		executor:        executor,
	}, nil
}

type SpleeterSeparator struct {
	spleeterBinPath string
	model           stementity.Model
	executor        executor.Executor
}

func (s SpleeterSeparator) SeparateToFile(ctx context.Context, request Request) error {
	absInputPath, err := filepath.Abs(request.InputPath)
	if err != nil {
		return cerr.Wrap(err).Error("Cannot convert input path to absolute format")
	}

	errctx := cerr.Field("input_path", absInputPath).Field("model", s.model)

	absStemDir, err := filepath.Abs(request.StemDir)
	if err != nil {
		return errctx.Wrap(err).Error("Cannot convert stem dir to absolute format")
	}

	// separating is a lengthy process, if we want to halt now is the time
	if ctx.Err() != nil {
		return errctx.Wrap(ctx.Err()).Error("Context cancelled before separating could happen")
	}

	if err := s.runSpleeter(absInputPath, absStemDir, request.Codec, request.Bitrate); err != nil {
		return errctx.Field("stem_dir", absStemDir).
			Wrap(err).Error("Failed to execute spleeter")
	}

	return nil
}

func (s SpleeterSeparator) runSpleeter(inputPath string, stemDir string, codec stementity.Format, bitrate string) error {
	outputRoot := filepath.Dir(stemDir)
	// spleeter nests its output as <output root>/<filename format>
	filenameFormat := filepath.Base(stemDir) + "/{instrument}.{codec}"

	logger := log.WithFields(log.Fields{
		"inputPath": inputPath,
		"stemDir":   stemDir,
		"model":     s.model,
		"codec":     codec,
	})

	args := []string{"separate", "-p", string(s.model), "-o", outputRoot, "-c", string(codec)}
	if bitrate != "" {
		args = append(args, "-b", bitrate)
	}
	args = append(args, "-f", filenameFormat, inputPath)

	errctx := cerr.Field("spleeter_bin_path", s.spleeterBinPath).Field("spleeter_args", args)

	logger.Info("Running spleeter command")

	cmd := s.executor.Command(s.spleeterBinPath, args...)
	cmd.SetDir(outputRoot)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return errctx.Field("spleeter_output", string(output)).
			Wrap(err).
			Error(fmt.Sprintf("Error occurred while running spleeter: %s", string(output)))
	}

	logger.Debug(string(output))
	logger.Info("Finished spleeter command")

	return nil
}
