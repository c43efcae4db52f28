package stementity

import (
	"fmt"
	"time"
)

type Stem struct {
	Name        string `json:"name"`
	Filename    string `json:"filename"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url"`
}

func DownloadURL(jobID string, stemName string) string {
	return fmt.Sprintf("/download/%s/%s", jobID, stemName)
}

type SeparationResult struct {
	Status     string `json:"status"`
	JobID      string `json:"job_id"`
	Model      Model  `json:"model"`
	Format     Format `json:"format"`
	Stems      []Stem `json:"stems"`
	TotalStems int    `json:"total_stems"`
}

func NewSeparationResult(jobID string, model Model, format Format, stems []Stem) SeparationResult {
	return SeparationResult{
		Status:     "success",
		JobID:      jobID,
		Model:      model,
		Format:     format,
		Stems:      stems,
		TotalStems: len(stems),
	}
}

// Manifest is persisted next to the stems so downloads resolve
// a stem name to exactly one file
type Manifest struct {
	JobID     string            `json:"job_id"`
	Model     Model             `json:"model"`
	Format    Format            `json:"format"`
	CreatedAt time.Time         `json:"created_at"`
	Stems     map[string]string `json:"stems"`
}

// StemFile is a stem located on disk for download
type StemFile struct {
	Name     string
	Filename string
	Path     string
}
