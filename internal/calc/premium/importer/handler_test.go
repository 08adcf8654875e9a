package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func surveyWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	header := []interface{}{"Category", "OR Versine", "OR Cant", "IR Versine", "IR Cant", "Location"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func uploadRequest(t *testing.T, target string, file *bytes.Buffer) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "survey.xlsx")
	require.NoError(t, err)
	_, err = part.Write(file.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var surveyRows = [][]interface{}{
	{"Tube Lines", 37, 41, 40, 38, "Baker Street"},
	{"SubSurfaceOpen", 37, 41, 40, 38},
	{"Tube", 0, 41, 40, 38, "bad versine"},
	{"Tram", 37, 41, 40, 38},
	{"Tube", "abc", 41, 40, 38},
	{"Tube", 37},
}

func TestImport(t *testing.T) {
	out, err := Import(surveyWorkbook(t, surveyRows))
	require.NoError(t, err)
	assert.Equal(t, 6, out.Count)
	assert.Equal(t, 4, out.Failed)

	require.NotNil(t, out.Rows[0].Result)
	assert.Equal(t, 2, out.Rows[0].SheetRow)
	assert.Equal(t, "Baker Street", out.Rows[0].Input.Location)
	assert.Equal(t, 1692, out.Rows[0].Result.FinalClearanceMM)
	assert.Equal(t, 1947, out.Rows[1].Result.FinalClearanceMM)

	assert.Equal(t, "All Versine values must be positive, and Cant values must be non-negative.", out.Rows[2].Error)
	assert.Contains(t, out.Rows[3].Error, "unknown track category")
	assert.Contains(t, out.Rows[4].Error, "outer versine")
	assert.Contains(t, out.Rows[5].Error, "bad row")
	assert.Equal(t, 7, out.Rows[5].SheetRow)
}

func TestImportRejectsEmptyAndInvalid(t *testing.T) {
	_, err := Import(surveyWorkbook(t, nil))
	assert.ErrorContains(t, err, "empty sheet")

	_, err = Import(bytes.NewBufferString("not a workbook"))
	assert.ErrorContains(t, err, "invalid file")
}

func TestHandlerClearanceJSON(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.Clearance(rec, uploadRequest(t, "/api/tools/clearance/import", surveyWorkbook(t, surveyRows[:2])))
	require.Equal(t, http.StatusOK, rec.Code)

	var out ClearanceImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 2, out.Count)
	assert.Zero(t, out.Failed)
}

func TestHandlerClearanceXLSX(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.Clearance(rec, uploadRequest(t, "/api/tools/clearance/import?format=xlsx", surveyWorkbook(t, surveyRows[:3])))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(resultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Min 6ft Clearance (mm)", rows[0][11])
	assert.Equal(t, "Tube Lines", rows[1][0])
	assert.Equal(t, "1692", rows[1][11])
	assert.Equal(t, "1947", rows[2][11])
	assert.Equal(t, "All Versine values must be positive, and Cant values must be non-negative.", rows[3][12])
}

func TestHandlerClearanceMissingFile(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.Clearance(rec, httptest.NewRequest(http.MethodPost, "/api/tools/clearance/import", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
