package stementity

import (
	"github.com/cockroachdb/errors"
	"strings"
)

type Model string

const (
	InvalidModel   Model = ""
	TwoStemsModel  Model = "spleeter:2stems"
	FourStemsModel Model = "spleeter:4stems"
	FiveStemsModel Model = "spleeter:5stems"
	DefaultModel         = FourStemsModel
)

type ModelInfo struct {
	Name        Model    `json:"name"`
	Description string   `json:"description"`
	Stems       []string `json:"stems"`
}

var catalog = []ModelInfo{
	{
		Name:        TwoStemsModel,
		Description: "Vocals and accompaniment",
		Stems:       []string{"vocals", "accompaniment"},
	},
	{
		Name:        FourStemsModel,
		Description: "Vocals, drums, bass, other",
		Stems:       []string{"vocals", "drums", "bass", "other"},
	},
	{
		Name:        FiveStemsModel,
		Description: "Vocals, drums, bass, piano, other",
		Stems:       []string{"vocals", "drums", "bass", "piano", "other"},
	},
}

func Catalog() []ModelInfo {
	models := make([]ModelInfo, len(catalog))
	for i, info := range catalog {
		models[i] = ModelInfo{
			Name:        info.Name,
			Description: info.Description,
			Stems:       append([]string(nil), info.Stems...),
		}
	}

	return models
}

func ValidModels() []Model {
	models := make([]Model, len(catalog))
	for i, info := range catalog {
		models[i] = info.Name
	}

	return models
}

func ParseModel(value string) (Model, error) {
	for _, info := range catalog {
		if string(info.Name) == value {
			return info.Name, nil
		}
	}

	return InvalidModel, errors.Newf("Value %q does not match any model", value)
}

func (m Model) Stems() []string {
	for _, info := range catalog {
		if info.Name == m {
			return append([]string(nil), info.Stems...)
		}
	}

	return nil
}

type Format string

const (
	InvalidFormat  Format = ""
	MP3Format      Format = "mp3"
	WAVFormat      Format = "wav"
	DefaultFormat         = MP3Format
	DefaultBitrate        = "320k"
)

var ValidFormats = []Format{MP3Format, WAVFormat}

func ParseFormat(value string) (Format, error) {
	lowered := Format(strings.ToLower(value))
	for _, format := range ValidFormats {
		if format == lowered {
			return format, nil
		}
	}

	return InvalidFormat, errors.Newf("Value %q does not match any format", value)
}

func (f Format) Extension() string {
	return "." + string(f)
}

// Bitrate is empty for lossless formats
func (f Format) Bitrate() string {
	if f == MP3Format {
		return DefaultBitrate
	}

	return ""
}

var AllowedExtensions = []string{"mp3", "wav", "flac", "ogg", "m4a", "wma"}

func IsAllowedFilename(filename string) bool {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return false
	}

	ext := strings.ToLower(filename[dot+1:])
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}

	return false
}
