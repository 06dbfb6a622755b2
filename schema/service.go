package schema

import "context"

// ImmuService is the RPC surface this client consumes. The generated
// gRPC stub satisfies it; tests substitute in-process fakes.
type ImmuService interface {
	OpenSession(ctx context.Context, req *OpenSessionRequest) (*OpenSessionResponse, error)
	CloseSession(ctx context.Context, req *Empty) (*Empty, error)
	KeepAlive(ctx context.Context, req *Empty) (*Empty, error)

	CurrentState(ctx context.Context, req *Empty) (*ImmutableState, error)

	Get(ctx context.Context, req *KeyRequest) (*Entry, error)
	VerifiableGet(ctx context.Context, req *VerifiableGetRequest) (*VerifiableEntry, error)
	GetAll(ctx context.Context, req *KeyListRequest) (*Entries, error)
	Set(ctx context.Context, req *SetRequest) (*TxHeader, error)
	VerifiableSet(ctx context.Context, req *VerifiableSetRequest) (*VerifiableTx, error)
	Delete(ctx context.Context, req *DeleteKeysRequest) (*TxHeader, error)

	SetReference(ctx context.Context, req *ReferenceRequest) (*TxHeader, error)
	VerifiableSetReference(ctx context.Context, req *VerifiableReferenceRequest) (*VerifiableTx, error)

	ZAdd(ctx context.Context, req *ZAddRequest) (*TxHeader, error)
	VerifiableZAdd(ctx context.Context, req *VerifiableZAddRequest) (*VerifiableTx, error)
	ZScan(ctx context.Context, req *ZScanRequest) (*ZEntries, error)

	Scan(ctx context.Context, req *ScanRequest) (*Entries, error)
	History(ctx context.Context, req *HistoryRequest) (*Entries, error)

	TxById(ctx context.Context, req *TxRequest) (*Tx, error)
	VerifiableTxById(ctx context.Context, req *VerifiableTxRequest) (*VerifiableTx, error)
	TxScan(ctx context.Context, req *TxScanRequest) (*TxList, error)

	FlushIndex(ctx context.Context, req *FlushIndexRequest) (*FlushIndexResponse, error)
	CompactIndex(ctx context.Context, req *Empty) (*Empty, error)

	CreateDatabaseV2(ctx context.Context, req *CreateDatabaseRequest) (*CreateDatabaseResponse, error)
	UseDatabase(ctx context.Context, req *Database) (*UseDatabaseReply, error)
	DatabaseListV2(ctx context.Context, req *DatabaseListRequestV2) (*DatabaseListResponseV2, error)

	Health(ctx context.Context, req *Empty) (*HealthResponse, error)
	ListUsers(ctx context.Context, req *Empty) (*UserList, error)
	CreateUser(ctx context.Context, req *CreateUserRequest) (*Empty, error)
	ChangePassword(ctx context.Context, req *ChangePasswordRequest) (*Empty, error)

	SQLExec(ctx context.Context, req *SQLExecRequest) (*SQLExecResult, error)
	SQLQuery(ctx context.Context, req *SQLQueryRequest) (*SQLQueryResult, error)
}
