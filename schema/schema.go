// Package schema declares the wire-level messages exchanged with an
// immudb server and the ImmuService interface the generated gRPC stub
// satisfies. The client consumes the protocol at this message level;
// stub generation and marshalling live outside this module.
package schema

// KVMetadata carries the per-entry attributes the server indexes and
// returns alongside keys and values.
type KVMetadata struct {
	Deleted      bool
	Expiration   *Expiration
	NonIndexable bool
}

// Expiration is the absolute expiration time of an entry, in unix seconds.
type Expiration struct {
	ExpiresAt int64
}

type KeyValue struct {
	Key      []byte
	Value    []byte
	Metadata *KVMetadata
}

type Entry struct {
	Tx           uint64
	Key          []byte
	Value        []byte
	ReferencedBy *Reference
	Metadata     *KVMetadata
	Expired      bool
	Revision     uint64
}

type Reference struct {
	Tx       uint64
	Key      []byte
	AtTx     uint64
	Metadata *KVMetadata
	Revision uint64
}

type Entries struct {
	Entries []*Entry
}

type ZEntry struct {
	Set   []byte
	Key   []byte
	Entry *Entry
	Score float64
	AtTx  uint64
}

type ZEntries struct {
	Entries []*ZEntry
}

// TxHeader is the authenticated summary of a transaction as sent on
// the wire. Hashes are raw 32-byte digests.
type TxHeader struct {
	Id       uint64
	PrevAlh  []byte
	Ts       int64
	Version  int32
	Nentries int32
	EH       []byte
	BlTxId   uint64
	BlRoot   []byte
}

type TxEntry struct {
	Key      []byte
	HValue   []byte
	VLen     int32
	Metadata *KVMetadata
	Value    []byte
}

type Tx struct {
	Header  *TxHeader
	Entries []*TxEntry
}

type TxList struct {
	Txs []*Tx
}

// InclusionProof is a Merkle path for one entry inside one transaction.
type InclusionProof struct {
	Leaf  int32
	Width int32
	Terms [][]byte
}

// LinearProof chains Alh preimages between two transaction ids.
type LinearProof struct {
	SourceTxId uint64
	TargetTxId uint64
	Terms      [][]byte
}

// DualProof links two transactions through the binary log: an
// inclusion-in-range proof, a consistency proof, the Alh of the last
// tx covered by the target's binary log, a last-inclusion proof and a
// linear proof for the uncovered tail.
type DualProof struct {
	SourceTxHeader     *TxHeader
	TargetTxHeader     *TxHeader
	InclusionProof     [][]byte
	ConsistencyProof   [][]byte
	TargetBlTxAlh      []byte
	LastInclusionProof [][]byte
	LinearProof        *LinearProof
}

type Signature struct {
	PublicKey []byte
	Signature []byte
}

type VerifiableTx struct {
	Tx        *Tx
	DualProof *DualProof
	Signature *Signature
}

type VerifiableEntry struct {
	Entry          *Entry
	VerifiableTx   *VerifiableTx
	InclusionProof *InclusionProof
}

// ImmutableState is the server's current view of a database: its last
// committed transaction id and accumulated hash, optionally signed.
type ImmutableState struct {
	Db        string
	TxId      uint64
	TxHash    []byte
	Signature *Signature
}

type Key struct {
	Key []byte
}

type KeyRequest struct {
	Key        []byte
	AtTx       uint64
	SinceTx    uint64
	NoWait     bool
	AtRevision int64
}

type KeyListRequest struct {
	Keys    [][]byte
	SinceTx uint64
}

type SetRequest struct {
	KVs    []*KeyValue
	NoWait bool
}

type VerifiableSetRequest struct {
	SetRequest   *SetRequest
	ProveSinceTx uint64
}

type VerifiableGetRequest struct {
	KeyRequest   *KeyRequest
	ProveSinceTx uint64
}

type ReferenceRequest struct {
	Key           []byte
	ReferencedKey []byte
	AtTx          uint64
	BoundRef      bool
	NoWait        bool
}

type VerifiableReferenceRequest struct {
	ReferenceRequest *ReferenceRequest
	ProveSinceTx     uint64
}

type ZAddRequest struct {
	Set      []byte
	Score    float64
	Key      []byte
	AtTx     uint64
	BoundRef bool
	NoWait   bool
}

type VerifiableZAddRequest struct {
	ZAddRequest  *ZAddRequest
	ProveSinceTx uint64
}

type ScanRequest struct {
	SeekKey       []byte
	EndKey        []byte
	Prefix        []byte
	Desc          bool
	Limit         uint64
	SinceTx       uint64
	NoWait        bool
	InclusiveSeek bool
	InclusiveEnd  bool
	Offset        uint64
}

type HistoryRequest struct {
	Key     []byte
	Offset  uint64
	Limit   int32
	Desc    bool
	SinceTx uint64
}

type ZScanRequest struct {
	Set           []byte
	SeekKey       []byte
	SeekScore     float64
	SeekAtTx      uint64
	InclusiveSeek bool
	Limit         uint64
	Desc          bool
	MinScore      *Score
	MaxScore      *Score
	SinceTx       uint64
	NoWait        bool
	Offset        uint64
}

type Score struct {
	Score float64
}

type TxRequest struct {
	Tx      uint64
	SinceTx uint64
	NoWait  bool
}

type VerifiableTxRequest struct {
	Tx           uint64
	ProveSinceTx uint64
}

type TxScanRequest struct {
	InitialTx uint64
	Limit     uint32
	Desc      bool
}

type DeleteKeysRequest struct {
	Keys    [][]byte
	SinceTx uint64
	NoWait  bool
}

type FlushIndexRequest struct {
	CleanupPercentage float32
	Synced            bool
}

type FlushIndexResponse struct {
	Database string
}

type OpenSessionRequest struct {
	Username     []byte
	Password     []byte
	DatabaseName string
}

type OpenSessionResponse struct {
	SessionID  string
	ServerUUID string
}

type CreateDatabaseRequest struct {
	Name        string
	IfNotExists bool
}

type CreateDatabaseResponse struct {
	Name           string
	AlreadyExisted bool
}

type Database struct {
	DatabaseName string
}

type DatabaseListRequestV2 struct{}

type DatabaseInfo struct {
	Name   string
	Loaded bool
}

type DatabaseListResponseV2 struct {
	Databases []*DatabaseInfo
}

type UseDatabaseReply struct {
	Token string
}

type HealthResponse struct {
	Status  bool
	Version string
}

type User struct {
	User        []byte
	Active      bool
	Createdby   string
	Createdat   string
	Permissions []*Permission
}

type Permission struct {
	Database   string
	Permission uint32
}

type UserList struct {
	Users []*User
}

type CreateUserRequest struct {
	User       []byte
	Password   []byte
	Permission uint32
	Database   string
}

type ChangePasswordRequest struct {
	User        []byte
	OldPassword []byte
	NewPassword []byte
}

// Empty mirrors the protobuf empty message.
type Empty struct{}
