package domain

// ExportParams identifies one export query: a maproom product plus the
// forecast configuration under analysis.
type ExportParams struct {
	Maproom         string
	Mode            int
	Season          string
	Predictor       string
	Predictand      string
	Regions         []string
	Year            int
	IssueMonth0     int
	Frequency       int
	IncludeUpcoming bool
}

// RegionsParams identifies one administrative-region lookup.
type RegionsParams struct {
	Maproom       string
	Level         int
	NeedValidKeys bool
	ValidKeys     []string
}
