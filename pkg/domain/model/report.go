package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// ReportsResponse is the validated payload of GET /view_reports.
// GraphData is nil when the backend sent no graph_data array.
type ReportsResponse struct {
	Summary   ReportSummary     `json:"summary"`
	GraphData []json.RawMessage `json:"graph_data"`
	TableData []ReportRow       `json:"table_data"`
}

// ReportSummary aggregates all datasets known to the backend
type ReportSummary struct {
	TotalDatasets Count `json:"total_datasets"`
	TotalRows     Count `json:"total_rows"`
}

// Count is a whole JSON number. Integral values written as 3.0 or 1e2 are accepted.
type Count int64

func (c *Count) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if v, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*c = Count(v)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return goerr.New("count must be a whole number", goerr.V("value", string(data)))
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return goerr.New("count is out of range", goerr.V("value", string(data)))
	}
	*c = Count(f)
	return nil
}

// ReportRow is one dataset in the reports table. Timestamp is kept raw since backends
// send it either as a string or as a number.
type ReportRow struct {
	Filename  string          `json:"filename"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
	Rows      Count           `json:"rows"`
	Totals    *ReportTotals   `json:"totals,omitempty"`
}

// FilenameText returns the filename, "-" if absent
func (r ReportRow) FilenameText() string {
	if r.Filename == "" {
		return "-"
	}
	return r.Filename
}

// TimestampText returns a string timestamp unquoted and any other value as raw JSON text.
// An absent or null timestamp yields "".
func (r ReportRow) TimestampText() string {
	raw := bytes.TrimSpace(r.Timestamp)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ReportTotals holds optional supply/consumption totals of a dataset
type ReportTotals struct {
	TotalSupplied *float64 `json:"total_supplied,omitempty"`
	TotalConsumed *float64 `json:"total_consumed,omitempty"`
}

// ParseReportsResponse decodes and validates a reports payload.
// Absent fields are defaulted; mistyped fields and invalid values reject the payload.
func ParseReportsResponse(data []byte) (*ReportsResponse, error) {
	var raw struct {
		Summary   *ReportSummary  `json:"summary"`
		GraphData json.RawMessage `json:"graph_data"`
		TableData []ReportRow     `json:"table_data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, goerr.Wrap(ErrInvalidResponse, "failed to decode reports response",
			goerr.V(EndpointKey, "/view_reports"), goerr.V("cause", err.Error()))
	}

	resp := &ReportsResponse{
		GraphData: parseGraphData(raw.GraphData),
		TableData: raw.TableData,
	}
	if raw.Summary != nil {
		resp.Summary = *raw.Summary
	}
	if resp.TableData == nil {
		resp.TableData = []ReportRow{}
	}

	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return resp, nil
}

// Validate checks value constraints that JSON typing cannot express
func (r *ReportsResponse) Validate() error {
	if r.Summary.TotalDatasets < 0 {
		return goerr.Wrap(ErrInvalidResponse, "total_datasets must not be negative",
			goerr.V(FieldKey, "summary.total_datasets"), goerr.V("value", r.Summary.TotalDatasets))
	}
	if r.Summary.TotalRows < 0 {
		return goerr.Wrap(ErrInvalidResponse, "total_rows must not be negative",
			goerr.V(FieldKey, "summary.total_rows"), goerr.V("value", r.Summary.TotalRows))
	}
	for i, row := range r.TableData {
		if row.Rows < 0 {
			return goerr.Wrap(ErrInvalidResponse, "rows must not be negative",
				goerr.V(FieldKey, "table_data.rows"), goerr.V(IndexKey, i), goerr.V("value", row.Rows))
		}
	}
	return nil
}

// parseGraphData returns nil unless raw is a JSON array; an empty array stays non-nil
func parseGraphData(raw json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil
	}
	return items
}

// GraphDataJSON returns the graph data as indented JSON, or "" when no array was sent.
// An empty array renders as "[]".
func (r *ReportsResponse) GraphDataJSON() string {
	if r.GraphData == nil {
		return ""
	}
	data, err := json.Marshal(r.GraphData)
	if err != nil {
		return ""
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return string(data)
	}
	return out.String()
}

// SuppliedText returns the supplied total for display, "-" if absent
func (t *ReportTotals) SuppliedText() string {
	if t == nil {
		return "-"
	}
	return formatOptionalNumber(t.TotalSupplied)
}

// ConsumedText returns the consumed total for display, "-" if absent
func (t *ReportTotals) ConsumedText() string {
	if t == nil {
		return "-"
	}
	return formatOptionalNumber(t.TotalConsumed)
}

func formatOptionalNumber(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
