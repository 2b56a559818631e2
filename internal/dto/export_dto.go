package dto

// DateRangeQuery defines the from/to query parameters shared by exports.
type DateRangeQuery struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" binding:"required,datetime=2006-01-02"`
}

// ExportCountResponse carries the number of data lines an export would produce.
type ExportCountResponse struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Lines int    `json:"lines"`
}

// ExportColumnsResponse lists the ordered columns of a target layout.
type ExportColumnsResponse struct {
	Target  string   `json:"target"`
	Columns []string `json:"columns"`
}
