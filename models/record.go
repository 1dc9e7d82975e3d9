package models

// AllWards is the ward selection that disables the ward filter.
const AllWards = "全て"

// RawRecord holds one unparsed row of the transaction table, keyed by the
// column it came from. Line is the 1-based line in the source file.
type RawRecord struct {
	Line           int
	Ward           string
	Area           string
	Age            string
	StationMinutes string
	UnitPrice      string
	TotalPrice     string
}

// Record is one validated condominium transaction.
type Record struct {
	Ward           string  `json:"ward"`
	Area           float64 `json:"area"`
	Age            float64 `json:"age"`
	StationMinutes float64 `json:"station_minutes"`
	UnitPrice      float64 `json:"unit_price"`
	TotalPrice     float64 `json:"total_price"`
}

// Dataset is the immutable, ordered transaction table loaded at startup.
// It is safe to share between goroutines because nothing mutates it.
type Dataset struct {
	records []Record
	wards   []string
	bounds  Bounds
}

// NewDataset copies records into a new Dataset.
func NewDataset(records []Record) *Dataset {
	own := make([]Record, len(records))
	copy(own, records)

	ds := &Dataset{records: own}
	ds.wards = distinctWards(own)
	ds.bounds = computeBounds(own)
	return ds
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// At returns the i-th record.
func (d *Dataset) At(i int) Record { return d.records[i] }

// Records returns a copy of all records in load order.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Wards returns the distinct wards in lexical order.
func (d *Dataset) Wards() []string {
	out := make([]string, len(d.wards))
	copy(out, d.wards)
	return out
}

// Bounds returns the min/max of each filterable numeric field.
func (d *Dataset) Bounds() Bounds { return d.bounds }

// View is a read-only filtered subset of a Dataset in dataset order.
type View struct {
	records []Record
}

// NewView wraps records as a View. The slice is not copied.
func NewView(records []Record) View { return View{records: records} }

// Len returns the number of records in the view.
func (v View) Len() int { return len(v.records) }

// At returns the i-th record of the view.
func (v View) At(i int) Record { return v.records[i] }

// Records returns a copy of the view's records.
func (v View) Records() []Record {
	out := make([]Record, len(v.records))
	copy(out, v.records)
	return out
}

// Head returns up to n leading records.
func (v View) Head(n int) []Record {
	if n > len(v.records) {
		n = len(v.records)
	}
	return v.Records()[:n]
}
