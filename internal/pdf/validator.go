package pdf

import (
	"fmt"
	"os"
	"strings"

	pdferrors "github.com/a3tai/docparse/internal/pdf/errors"
	"github.com/a3tai/docparse/internal/pdf/wrapper"
)

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
	backend     wrapper.Backend
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64, backend wrapper.Backend) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
		backend:     backend,
	}
}

// ValidateFile checks a resolved path. Problems with the document are
// reported in the result, not as an error.
func (v *Validator) ValidateFile(path string) *ValidateFileResult {
	result := &ValidateFileResult{Path: path}

	info, err := v.checkFile(path)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	result.Size = info.Size()

	doc, err := v.backend.OpenDocument(path)
	if err != nil {
		result.Message = fmt.Sprintf("invalid PDF file: %v", err)
		return result
	}
	result.Pages = doc.GetPageCount()
	_ = doc.Close()
	result.Valid = true

	if err := v.backend.ValidateStructure(path); err != nil {
		result.StructureError = err.Error()
	} else {
		result.StructureValid = true
	}
	return result
}

// checkFile runs the cheap file system checks every operation needs before
// a document is parsed
func (v *Validator) checkFile(filePath string) (os.FileInfo, error) {
	if filePath == "" {
		return nil, pdferrors.New(pdferrors.ErrorTypeValidation, "path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, pdferrors.New(pdferrors.ErrorTypeValidation, "file does not exist").WithFile(filePath)
	}
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeValidation, "cannot access file", err).WithFile(filePath)
	}

	if fileInfo.IsDir() {
		return nil, pdferrors.New(pdferrors.ErrorTypeValidation, "path is a directory, not a file").WithFile(filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return nil, pdferrors.New(pdferrors.ErrorTypeValidation, "file is not a PDF").WithFile(filePath)
	}

	if fileInfo.Size() == 0 {
		return nil, pdferrors.New(pdferrors.ErrorTypeValidation, "file is empty").WithFile(filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeValidation, "file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize).WithFile(filePath)
	}

	return fileInfo, nil
}
