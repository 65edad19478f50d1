package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/recon-cli/internal/export"
	"github.com/sells-group/recon-cli/internal/model"
)

// writeResult renders v in the requested format, to output when set and to
// out otherwise. XLSX needs an output path and renders the workbook view.
func writeResult(out io.Writer, v any, workbook *model.Report, format, output string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}

	if f == export.FormatXLSX {
		if output == "" {
			return eris.New("--output is required for xlsx")
		}
		return export.WriteXLSX(output, workbook)
	}

	if output == "" {
		return export.Write(out, v, f)
	}
	file, err := os.Create(output)
	if err != nil {
		return eris.Wrapf(err, "create %s", output)
	}
	if err := export.Write(file, v, f); err != nil {
		_ = file.Close()
		return err
	}
	return eris.Wrapf(file.Close(), "close %s", output)
}
