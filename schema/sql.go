package schema

// SQLValue is one cell of a SQL result set or one bound parameter.
// Either Null is true and no other field is set, or exactly one field
// other than Null is set.
type SQLValue struct {
	Null bool
	N    *int64
	S    *string
	B    *bool
	Bs   []byte
	F    *float64
}

type NamedParam struct {
	Name  string
	Value *SQLValue
}

type SQLExecRequest struct {
	Sql    string
	Params []*NamedParam
	NoWait bool
}

type CommittedSQLTx struct {
	Header      *TxHeader
	UpdatedRows uint32
}

type SQLExecResult struct {
	Txs       []*CommittedSQLTx
	OngoingTx bool
}

type SQLQueryRequest struct {
	Sql           string
	Params        []*NamedParam
	ReuseSnapshot bool
}

type Column struct {
	Name string
	Type string
}

type Row struct {
	Columns []string
	Values  []*SQLValue
}

type SQLQueryResult struct {
	Columns []*Column
	Rows    []*Row
}
