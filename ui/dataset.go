package ui

import (
	"net/http"

	"aistats/adapters/excel"
	"aistats/domain/core"
	"aistats/domain/dataset"
	"aistats/ui/middleware"

	"github.com/gin-gonic/gin"
)

// ColumnSummary describes one column of the loaded dataset
type ColumnSummary struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Numeric  bool   `json:"numeric"`
	Missing  int    `json:"missing"`
	Labelled bool   `json:"has_value_labels"`
}

// DatasetSummary is the response of the dataset endpoints
type DatasetSummary struct {
	Name    string          `json:"name"`
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

func summarize(ds *dataset.Dataset, labels *dataset.LabelSet) DatasetSummary {
	out := DatasetSummary{Name: ds.Name, Rows: ds.RowCount()}
	for _, name := range ds.ColumnNames() {
		col, _ := ds.Column(name)
		summary := ColumnSummary{
			Name:     name,
			Numeric:  col.IsNumeric(),
			Missing:  col.MissingCount(),
			Labelled: len(labels.ValueLabels[name]) > 0,
		}
		if label := labels.VariableLabel(name); label != name {
			summary.Label = label
		}
		out.Columns = append(out.Columns, summary)
	}
	return out
}

func (s *Server) handleUploadDataset(c *gin.Context) {
	sess := middleware.Session(c)

	file, err := c.FormFile("file")
	if err != nil {
		s.respondError(c, badRequest("multipart field \"file\" is required"))
		return
	}
	format := excel.DetectFormat(file.Filename)
	if format == "" {
		s.respondError(c, badRequest("only .csv and .xlsx files are supported"))
		return
	}

	src, err := file.Open()
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer src.Close()

	ds, err := excel.Read(src, file.Filename, format)
	s.metrics.CountDatasetLoad(format, err == nil)
	if err != nil {
		s.respondError(c, err)
		return
	}

	sess.ReplaceDataset(ds)
	s.logger.Info("session %s loaded %s (%d rows, %d columns)", sess.ID, ds.Name, ds.RowCount(), ds.ColumnCount())
	c.JSON(http.StatusOK, summarize(ds, sess.Store().Labels()))
}

func (s *Server) handleGetDataset(c *gin.Context) {
	sess := middleware.Session(c)
	ds := sess.Store().CurrentDataset()
	if ds == nil {
		s.respondError(c, core.ErrNoData)
		return
	}
	c.JSON(http.StatusOK, summarize(ds, sess.Store().Labels()))
}

func (s *Server) handleClearDataset(c *gin.Context) {
	middleware.Session(c).ClearDataset()
	c.Status(http.StatusNoContent)
}
