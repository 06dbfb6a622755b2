package schema

import (
	"context"

	"google.golang.org/grpc"
)

const servicePath = "/immudb.schema.ImmuService/"

// grpcService adapts a gRPC client connection to the ImmuService
// interface by invoking the service methods directly. Message
// marshalling is handled by the connection's registered codec; the
// generated stub can be substituted through the same interface.
type grpcService struct {
	cc grpc.ClientConnInterface
}

// NewGRPCService wraps a client connection as an ImmuService.
func NewGRPCService(cc grpc.ClientConnInterface) ImmuService {
	return &grpcService{cc: cc}
}

func (s *grpcService) invoke(ctx context.Context, method string, in, out interface{}) error {
	return s.cc.Invoke(ctx, servicePath+method, in, out)
}

func (s *grpcService) OpenSession(ctx context.Context, req *OpenSessionRequest) (*OpenSessionResponse, error) {
	out := new(OpenSessionResponse)
	if err := s.invoke(ctx, "OpenSession", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) CloseSession(ctx context.Context, req *Empty) (*Empty, error) {
	out := new(Empty)
	if err := s.invoke(ctx, "CloseSession", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) KeepAlive(ctx context.Context, req *Empty) (*Empty, error) {
	out := new(Empty)
	if err := s.invoke(ctx, "KeepAlive", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) CurrentState(ctx context.Context, req *Empty) (*ImmutableState, error) {
	out := new(ImmutableState)
	if err := s.invoke(ctx, "CurrentState", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) Get(ctx context.Context, req *KeyRequest) (*Entry, error) {
	out := new(Entry)
	if err := s.invoke(ctx, "Get", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) VerifiableGet(ctx context.Context, req *VerifiableGetRequest) (*VerifiableEntry, error) {
	out := new(VerifiableEntry)
	if err := s.invoke(ctx, "VerifiableGet", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) GetAll(ctx context.Context, req *KeyListRequest) (*Entries, error) {
	out := new(Entries)
	if err := s.invoke(ctx, "GetAll", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) Set(ctx context.Context, req *SetRequest) (*TxHeader, error) {
	out := new(TxHeader)
	if err := s.invoke(ctx, "Set", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) VerifiableSet(ctx context.Context, req *VerifiableSetRequest) (*VerifiableTx, error) {
	out := new(VerifiableTx)
	if err := s.invoke(ctx, "VerifiableSet", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) Delete(ctx context.Context, req *DeleteKeysRequest) (*TxHeader, error) {
	out := new(TxHeader)
	if err := s.invoke(ctx, "Delete", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) SetReference(ctx context.Context, req *ReferenceRequest) (*TxHeader, error) {
	out := new(TxHeader)
	if err := s.invoke(ctx, "SetReference", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) VerifiableSetReference(ctx context.Context, req *VerifiableReferenceRequest) (*VerifiableTx, error) {
	out := new(VerifiableTx)
	if err := s.invoke(ctx, "VerifiableSetReference", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) ZAdd(ctx context.Context, req *ZAddRequest) (*TxHeader, error) {
	out := new(TxHeader)
	if err := s.invoke(ctx, "ZAdd", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) VerifiableZAdd(ctx context.Context, req *VerifiableZAddRequest) (*VerifiableTx, error) {
	out := new(VerifiableTx)
	if err := s.invoke(ctx, "VerifiableZAdd", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) ZScan(ctx context.Context, req *ZScanRequest) (*ZEntries, error) {
	out := new(ZEntries)
	if err := s.invoke(ctx, "ZScan", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) Scan(ctx context.Context, req *ScanRequest) (*Entries, error) {
	out := new(Entries)
	if err := s.invoke(ctx, "Scan", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) History(ctx context.Context, req *HistoryRequest) (*Entries, error) {
	out := new(Entries)
	if err := s.invoke(ctx, "History", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) TxById(ctx context.Context, req *TxRequest) (*Tx, error) {
	out := new(Tx)
	if err := s.invoke(ctx, "TxById", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) VerifiableTxById(ctx context.Context, req *VerifiableTxRequest) (*VerifiableTx, error) {
	out := new(VerifiableTx)
	if err := s.invoke(ctx, "VerifiableTxById", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) TxScan(ctx context.Context, req *TxScanRequest) (*TxList, error) {
	out := new(TxList)
	if err := s.invoke(ctx, "TxScan", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) FlushIndex(ctx context.Context, req *FlushIndexRequest) (*FlushIndexResponse, error) {
	out := new(FlushIndexResponse)
	if err := s.invoke(ctx, "FlushIndex", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) CompactIndex(ctx context.Context, req *Empty) (*Empty, error) {
	out := new(Empty)
	if err := s.invoke(ctx, "CompactIndex", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) CreateDatabaseV2(ctx context.Context, req *CreateDatabaseRequest) (*CreateDatabaseResponse, error) {
	out := new(CreateDatabaseResponse)
	if err := s.invoke(ctx, "CreateDatabaseV2", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) UseDatabase(ctx context.Context, req *Database) (*UseDatabaseReply, error) {
	out := new(UseDatabaseReply)
	if err := s.invoke(ctx, "UseDatabase", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) DatabaseListV2(ctx context.Context, req *DatabaseListRequestV2) (*DatabaseListResponseV2, error) {
	out := new(DatabaseListResponseV2)
	if err := s.invoke(ctx, "DatabaseListV2", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) Health(ctx context.Context, req *Empty) (*HealthResponse, error) {
	out := new(HealthResponse)
	if err := s.invoke(ctx, "Health", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) ListUsers(ctx context.Context, req *Empty) (*UserList, error) {
	out := new(UserList)
	if err := s.invoke(ctx, "ListUsers", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) CreateUser(ctx context.Context, req *CreateUserRequest) (*Empty, error) {
	out := new(Empty)
	if err := s.invoke(ctx, "CreateUser", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) ChangePassword(ctx context.Context, req *ChangePasswordRequest) (*Empty, error) {
	out := new(Empty)
	if err := s.invoke(ctx, "ChangePassword", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) SQLExec(ctx context.Context, req *SQLExecRequest) (*SQLExecResult, error) {
	out := new(SQLExecResult)
	if err := s.invoke(ctx, "SQLExec", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *grpcService) SQLQuery(ctx context.Context, req *SQLQueryRequest) (*SQLQueryResult, error) {
	out := new(SQLQueryResult)
	if err := s.invoke(ctx, "SQLQuery", req, out); err != nil {
		return nil, err
	}
	return out, nil
}
