package analyzer

import (
	"fmt"
	"os"

	domainErrors "github.com/jbctechsolutions/beancounter/internal/domain/errors"
)

// ReportFileMode is the permission used for saved reports.
const ReportFileMode os.FileMode = 0644

// SaveReport writes report to path verbatim, replacing any existing file.
func SaveReport(path, report string) error {
	if path == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "output file name is empty", nil)
	}
	if err := os.WriteFile(path, []byte(report), ReportFileMode); err != nil {
		return domainErrors.WithContext(
			domainErrors.NewError(domainErrors.CodeIO, fmt.Sprintf("failed to save results to %s", path), err),
			"path", path,
		)
	}
	return nil
}
