package client

import (
	"context"
	"fmt"

	"github.com/elslush/immudb4go/schema"
)

// SQLExec runs a SQL statement. SQL responses carry no proofs; callers
// needing verifiability read back through the verified key-value
// surface.
func (c *ImmuClient) SQLExec(ctx context.Context, sql string, params map[string]interface{}) (*schema.SQLExecResult, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	res, err := svc.SQLExec(sctx, &schema.SQLExecRequest{
		Sql:    sql,
		Params: namedParams(params),
	})
	return res, mapServerError(err)
}

// SQLQuery runs a SQL query and returns its result set.
func (c *ImmuClient) SQLQuery(ctx context.Context, sql string, params map[string]interface{}) (*schema.SQLQueryResult, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	res, err := svc.SQLQuery(sctx, &schema.SQLQueryRequest{
		Sql:    sql,
		Params: namedParams(params),
	})
	return res, mapServerError(err)
}

// namedParams converts Go values into SQL parameter messages. Unknown
// types are passed as their string form; the server rejects what it
// cannot type.
func namedParams(params map[string]interface{}) []*schema.NamedParam {
	if len(params) == 0 {
		return nil
	}
	out := make([]*schema.NamedParam, 0, len(params))
	for name, v := range params {
		out = append(out, &schema.NamedParam{Name: name, Value: sqlValue(v)})
	}
	return out
}

func sqlValue(v interface{}) *schema.SQLValue {
	switch tv := v.(type) {
	case nil:
		return &schema.SQLValue{Null: true}
	case int:
		n := int64(tv)
		return &schema.SQLValue{N: &n}
	case int64:
		return &schema.SQLValue{N: &tv}
	case uint64:
		n := int64(tv)
		return &schema.SQLValue{N: &n}
	case string:
		return &schema.SQLValue{S: &tv}
	case bool:
		return &schema.SQLValue{B: &tv}
	case float64:
		return &schema.SQLValue{F: &tv}
	case []byte:
		return &schema.SQLValue{Bs: tv}
	default:
		s := fmt.Sprintf("%v", v)
		return &schema.SQLValue{S: &s}
	}
}
