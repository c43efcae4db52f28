package engine

import (
	"context"
	stementity "github.com/veedubyou/spleeter-api/src/server/internal/stem/entity"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

type Request struct {
	InputPath string
	// StemDir is the directory the stem files are written into, it is
	// created by the separator
	StemDir string
	Codec   stementity.Format
	Bitrate string
}

//counterfeiter:generate . Separator
type Separator interface {
	SeparateToFile(ctx context.Context, request Request) error
}

type Factory func(ctx context.Context, model stementity.Model) (Separator, error)
