package importer

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const resultSheet = "Clearance"

var exportHeader = []interface{}{
	"Category", "Outer Versine (mm)", "Outer Cant (mm)", "Inner Versine (mm)", "Inner Cant (mm)", "Location",
	"Outer Radius", "Inner Radius", "Centre Throw (mm)", "End Throw (mm)", "Cant Effect (mm)", "Min 6ft Clearance (mm)", "Error",
}

// Export writes one row per imported row, inputs first and results after.
// Failed rows keep their inputs and carry the error text in the last column.
func Export(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(resultSheet, "A1", &exportHeader); err != nil {
		return err
	}
	for i, row := range rows {
		in := row.Input
		values := []interface{}{
			in.Category.Label(), in.OuterVersine, in.OuterCant, in.InnerVersine, in.InnerCant, in.Location,
		}
		if row.Result != nil {
			res := row.Result
			values = append(values, res.OuterRadius, res.InnerRadius, res.CentreThrowMM, res.EndThrowMM, res.CantEffectMM, res.FinalClearanceMM, "")
		} else {
			values = append(values, "", "", "", "", "", "", row.Error)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resultSheet, cell, &values); err != nil {
			return err
		}
	}
	return f.Write(w)
}
