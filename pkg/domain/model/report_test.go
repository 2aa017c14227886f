package model_test

import (
	"errors"
	"testing"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func TestParseReportsResponse(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		resp, err := model.ParseReportsResponse([]byte(`{
			"summary": {"total_datasets": 3, "total_rows": 120},
			"graph_data": [],
			"table_data": [{"filename": "a.csv", "timestamp": "t1", "rows": 40,
				"totals": {"total_supplied": 100, "total_consumed": 90}}]
		}`))
		gt.NoError(t, err).Required()

		gt.Value(t, resp.Summary.TotalDatasets).Equal(model.Count(3))
		gt.Value(t, resp.Summary.TotalRows).Equal(model.Count(120))
		gt.Array(t, resp.TableData).Length(1).Required()
		gt.Value(t, resp.TableData[0].Filename).Equal("a.csv")
		gt.Value(t, resp.TableData[0].TimestampText()).Equal("t1")
		gt.Value(t, resp.TableData[0].Totals.SuppliedText()).Equal("100")
		gt.Value(t, resp.TableData[0].Totals.ConsumedText()).Equal("90")
		gt.Value(t, resp.GraphDataJSON()).Equal("[]")
	})

	t.Run("missing fields are defaulted", func(t *testing.T) {
		resp, err := model.ParseReportsResponse([]byte(`{}`))
		gt.NoError(t, err).Required()
		gt.Value(t, resp.Summary.TotalDatasets).Equal(model.Count(0))
		gt.Array(t, resp.TableData).Length(0)
		gt.Array(t, resp.GraphData).Length(0)
		gt.Value(t, resp.GraphDataJSON()).Equal("")
	})

	t.Run("graph data that is not an array is treated as absent", func(t *testing.T) {
		resp, err := model.ParseReportsResponse([]byte(`{"graph_data": {"zone": "A"}}`))
		gt.NoError(t, err).Required()
		gt.Value(t, resp.GraphDataJSON()).Equal("")
	})

	integral := []struct {
		name string
		body string
		get  func(*model.ReportsResponse) model.Count
		want model.Count
	}{
		{
			name: "total_datasets 3.0",
			body: `{"summary":{"total_datasets":3.0,"total_rows":120}}`,
			get:  func(r *model.ReportsResponse) model.Count { return r.Summary.TotalDatasets },
			want: 3,
		},
		{
			name: "rows 40.0",
			body: `{"table_data":[{"filename":"a.csv","timestamp":"t1","rows":40.0}]}`,
			get:  func(r *model.ReportsResponse) model.Count { return r.TableData[0].Rows },
			want: 40,
		},
		{
			name: "rows 1e2",
			body: `{"table_data":[{"filename":"a.csv","timestamp":"t1","rows":1e2}]}`,
			get:  func(r *model.ReportsResponse) model.Count { return r.TableData[0].Rows },
			want: 100,
		},
		{
			name: "null total_rows",
			body: `{"summary":{"total_datasets":1,"total_rows":null}}`,
			get:  func(r *model.ReportsResponse) model.Count { return r.Summary.TotalRows },
			want: 0,
		},
	}
	for _, tc := range integral {
		t.Run("accepts "+tc.name, func(t *testing.T) {
			resp, err := model.ParseReportsResponse([]byte(tc.body))
			gt.NoError(t, err).Required()
			gt.Value(t, tc.get(resp)).Equal(tc.want)
		})
	}

	t.Run("row problems are defaulted, not rejected", func(t *testing.T) {
		resp, err := model.ParseReportsResponse([]byte(`{
			"summary": {"total_datasets": 2, "total_rows": 8},
			"table_data": [
				{"filename": "a.csv", "timestamp": 1700000000, "rows": 4},
				{"timestamp": "t1", "rows": 4},
				{"filename": "c.csv"}
			]
		}`))
		gt.NoError(t, err).Required()
		gt.Value(t, resp.Summary.TotalRows).Equal(model.Count(8))
		gt.Array(t, resp.TableData).Length(3).Required()
		gt.Value(t, resp.TableData[0].TimestampText()).Equal("1700000000")
		gt.Value(t, resp.TableData[1].FilenameText()).Equal("-")
		gt.Value(t, resp.TableData[1].TimestampText()).Equal("t1")
		gt.Value(t, resp.TableData[2].TimestampText()).Equal("")
		gt.Value(t, resp.TableData[2].FilenameText()).Equal("c.csv")
	})

	t.Run("row without totals shows placeholder", func(t *testing.T) {
		resp, err := model.ParseReportsResponse([]byte(`{"table_data":[{"filename":"b.csv","rows":1}]}`))
		gt.NoError(t, err).Required()
		gt.Value(t, resp.TableData[0].Totals.SuppliedText()).Equal("-")
		gt.Value(t, resp.TableData[0].Totals.ConsumedText()).Equal("-")
	})

	t.Run("partial totals", func(t *testing.T) {
		resp, err := model.ParseReportsResponse([]byte(`{"table_data":[{"filename":"c.csv","rows":1,"totals":{"total_supplied":12.5}}]}`))
		gt.NoError(t, err).Required()
		gt.Value(t, resp.TableData[0].Totals.SuppliedText()).Equal("12.5")
		gt.Value(t, resp.TableData[0].Totals.ConsumedText()).Equal("-")
	})

	t.Run("graph data is indented", func(t *testing.T) {
		resp, err := model.ParseReportsResponse([]byte(`{"graph_data":[{"zone":"north","leaks":2}]}`))
		gt.NoError(t, err).Required()
		gt.String(t, resp.GraphDataJSON()).Contains(`"zone": "north"`)
	})

	invalid := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>`},
		{name: "mistyped summary", body: `{"summary": "3"}`},
		{name: "mistyped rows", body: `{"table_data":[{"filename":"a.csv","rows":"forty"}]}`},
		{name: "table_data not array", body: `{"table_data":{}}`},
		{name: "negative total", body: `{"summary":{"total_datasets":-1}}`},
		{name: "summary not object", body: `{"summary": [1, 2]}`},
		{name: "fractional rows", body: `{"table_data":[{"filename":"a.csv","rows":40.5}]}`},
		{name: "fractional total", body: `{"summary":{"total_rows":1.25}}`},
		{name: "negative integral float", body: `{"summary":{"total_datasets":-2.0}}`},
		{name: "negative rows", body: `{"table_data":[{"filename":"a.csv","rows":-5}]}`},
	}
	for _, tc := range invalid {
		t.Run("rejects "+tc.name, func(t *testing.T) {
			_, err := model.ParseReportsResponse([]byte(tc.body))
			gt.Error(t, err)
			gt.Bool(t, errors.Is(err, model.ErrInvalidResponse)).True()
		})
	}
}
