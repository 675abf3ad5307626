package ethapi

import (
	"fmt"
	"net/http"

	"github.com/subclone/subeth/gateway"
	"github.com/subclone/subeth/translator"
)

// EthService is the rpc server implementation, one function per supported
// Ethereum JSON-RPC method. Arguments and return values are hex-string
// encoded, matching standard JSON-RPC conventions.
//
//go:generate counterfeiter -o fakes/fake_ethservice.go . EthService
type EthService interface {
	ProtocolVersion(r *http.Request, _ *struct{}, reply *string) error
	Syncing(r *http.Request, _ *struct{}, reply *bool) error
	Accounts(r *http.Request, _ *struct{}, reply *[]string) error
	ChainId(r *http.Request, _ *struct{}, reply *string) error
	BlockNumber(r *http.Request, _ *struct{}, reply *string) error
	GetBlockByHash(r *http.Request, p *[]interface{}, reply *Block) error
	GetBlockByNumber(r *http.Request, p *[]interface{}, reply *Block) error
	GetBalance(r *http.Request, p *[]string, reply *string) error
	GetTransactionCount(r *http.Request, p *[]string, reply *string) error
	GetCode(r *http.Request, p *[]string, reply *string) error
	GetStorageAt(r *http.Request, p *[]string, reply *string) error
	Call(r *http.Request, args *EthArgs, reply *string) error
	GetTransactionByBlockNumberAndIndex(r *http.Request, p *[]string, reply *Transaction) error
	GasPrice(r *http.Request, _ *struct{}, reply *string) error
	Mining(r *http.Request, _ *struct{}, reply *bool) error
	Hashrate(r *http.Request, _ *struct{}, reply *string) error
	SubmitHashrate(r *http.Request, _ *[]string, reply *bool) error
	SubmitWork(r *http.Request, _ *[]string, reply *bool) error
	GetWork(r *http.Request, _ *struct{}, reply *WorkResult) error
	SendRawTransaction(r *http.Request, raw *string, reply *string) error
}

// Service implements EthService on top of a gateway.Client.
type Service struct {
	Client         *gateway.Client
	TokenDecimals  uint8
	MetadataLookup func() (translator.Metadata, error)
}

func (s *Service) ProtocolVersion(r *http.Request, _ *struct{}, reply *string) error {
	*reply = "0x1"
	return nil
}

func (s *Service) Syncing(r *http.Request, _ *struct{}, reply *bool) error {
	*reply = false
	return nil
}

func (s *Service) Accounts(r *http.Request, _ *struct{}, reply *[]string) error {
	*reply = []string{}
	return nil
}

func (s *Service) ChainId(r *http.Request, _ *struct{}, reply *string) error {
	*reply = hexQuantity(s.Client.ChainId())
	return nil
}

func (s *Service) BlockNumber(r *http.Request, _ *struct{}, reply *string) error {
	n, err := s.Client.BlockNumber(r.Context())
	if err != nil {
		return err
	}
	*reply = hexQuantity(n)
	return nil
}

func (s *Service) GetBlockByHash(r *http.Request, p *[]interface{}, reply *Block) error {
	params := *p
	if len(params) != 2 {
		return fmt.Errorf("need 2 params, got %d", len(params))
	}
	hashStr, ok := params[0].(string)
	if !ok {
		return fmt.Errorf("first parameter must be a string")
	}
	fullTx, ok := params[1].(bool)
	if !ok {
		return fmt.Errorf("second parameter must be a boolean")
	}

	raw, err := hexDecode(hashStr)
	if err != nil || len(raw) != 32 {
		return fmt.Errorf("invalid block hash %q", hashStr)
	}
	var hash [32]byte
	copy(hash[:], raw)

	metadata, err := s.metadata()
	if err != nil {
		return err
	}

	block, ok, err := s.Client.GetBlockByHash(r.Context(), hash, s.TokenDecimals, metadata)
	if err != nil {
		return err
	}
	if !ok {
		*reply = Block{}
		return nil
	}
	*reply = blockToWire(block, fullTx)
	return nil
}

func (s *Service) GetBlockByNumber(r *http.Request, p *[]interface{}, reply *Block) error {
	params := *p
	if len(params) != 2 {
		return fmt.Errorf("need 2 params, got %d", len(params))
	}
	tagStr, ok := params[0].(string)
	if !ok {
		return fmt.Errorf("first parameter must be a string")
	}
	fullTx, ok := params[1].(bool)
	if !ok {
		return fmt.Errorf("second parameter must be a boolean")
	}

	tag, err := parseDefaultBlock(tagStr)
	if err != nil {
		return err
	}

	metadata, err := s.metadata()
	if err != nil {
		return err
	}

	var (
		block translator.EthBlock
		found bool
	)
	switch {
	case tag.isNum:
		block, found, err = s.Client.GetBlockByNumber(r.Context(), tag.number, s.TokenDecimals, metadata)
	default:
		// "latest", "earliest", and "pending" are all served as the latest
		// finalized block: this gateway has no concept of an unfinalized
		// chain head or a distinct genesis fast-path.
		block, found, err = s.Client.GetLatestBlock(r.Context(), s.TokenDecimals, metadata)
	}
	if err != nil {
		return err
	}
	if !found {
		*reply = Block{}
		return nil
	}
	*reply = blockToWire(block, fullTx)
	return nil
}

func (s *Service) GetBalance(r *http.Request, p *[]string, reply *string) error {
	addr, err := parseAddrParam(*p)
	if err != nil {
		return err
	}
	balance, err := s.Client.GetBalance(r.Context(), addr)
	if err != nil {
		return err
	}
	*reply = hexUint256(balance)
	return nil
}

func (s *Service) GetTransactionCount(r *http.Request, p *[]string, reply *string) error {
	addr, err := parseAddrParam(*p)
	if err != nil {
		return err
	}
	n, err := s.Client.GetTransactionCount(r.Context(), addr)
	if err != nil {
		return err
	}
	*reply = hexQuantity(n)
	return nil
}

func (s *Service) GetCode(r *http.Request, p *[]string, reply *string) error {
	addr, err := parseAddrParam(*p)
	if err != nil {
		return err
	}
	*reply = hexEncode(s.Client.GetCode(addr))
	return nil
}

func (s *Service) GetStorageAt(r *http.Request, p *[]string, reply *string) error {
	params := *p
	if len(params) < 1 {
		return fmt.Errorf("need at least 1 param")
	}
	key, err := hexDecode(params[0])
	if err != nil {
		return fmt.Errorf("invalid storage key: %w", err)
	}

	at, err := s.latestHash(r)
	if err != nil {
		return err
	}

	raw, err := s.Client.GetStorageAt(r.Context(), key, at)
	if err != nil {
		return err
	}
	*reply = hexEncode(raw)
	return nil
}

func (s *Service) Call(r *http.Request, args *EthArgs, reply *string) error {
	toBytes, err := hexDecode(args.To)
	if err != nil || len(toBytes) != 20 {
		*reply = "0x"
		return nil
	}
	var to translator.Address
	copy(to[:], toBytes)

	input, err := hexDecode(args.Data)
	if err != nil {
		*reply = "0x"
		return nil
	}

	metadata, err := s.metadata()
	if err != nil {
		return err
	}

	at, err := s.latestHash(r)
	if err != nil {
		return err
	}

	result, err := s.Client.Call(r.Context(), to, input, metadata, at)
	if err != nil {
		return err
	}
	*reply = hexEncode(result)
	return nil
}

func (s *Service) GetTransactionByBlockNumberAndIndex(r *http.Request, p *[]string, reply *Transaction) error {
	params := *p
	if len(params) != 2 {
		return fmt.Errorf("need 2 params, got %d", len(params))
	}
	tag, err := parseDefaultBlock(params[0])
	if err != nil {
		return err
	}

	var index uint64
	if _, err := fmt.Sscanf(strip0x(params[1]), "%x", &index); err != nil {
		return fmt.Errorf("invalid transaction index %q", params[1])
	}

	metadata, err := s.metadata()
	if err != nil {
		return err
	}

	var (
		block translator.EthBlock
		found bool
	)
	if tag.isNum {
		block, found, err = s.Client.GetBlockByNumber(r.Context(), tag.number, s.TokenDecimals, metadata)
	} else {
		block, found, err = s.Client.GetLatestBlock(r.Context(), s.TokenDecimals, metadata)
	}
	if err != nil {
		return err
	}
	if !found || index >= uint64(len(block.Transactions)) {
		*reply = Transaction{}
		return nil
	}
	*reply = transactionToWire(block.Transactions[index], block)
	return nil
}

func (s *Service) GasPrice(r *http.Request, _ *struct{}, reply *string) error {
	*reply = hexQuantity(1_000_000)
	return nil
}

func (s *Service) Mining(r *http.Request, _ *struct{}, reply *bool) error {
	*reply = false
	return nil
}

func (s *Service) Hashrate(r *http.Request, _ *struct{}, reply *string) error {
	*reply = "0x0"
	return nil
}

func (s *Service) SubmitHashrate(r *http.Request, _ *[]string, reply *bool) error {
	*reply = false
	return nil
}

func (s *Service) SubmitWork(r *http.Request, _ *[]string, reply *bool) error {
	*reply = false
	return nil
}

func (s *Service) GetWork(r *http.Request, _ *struct{}, reply *WorkResult) error {
	*reply = WorkResult{"0x0", "0x0", "0x0"}
	return nil
}

func (s *Service) SendRawTransaction(r *http.Request, raw *string, reply *string) error {
	txBytes, err := hexDecode(*raw)
	if err != nil {
		return fmt.Errorf("invalid raw transaction: %w", err)
	}

	tx, err := translator.DecodeEthereumTransaction(txBytes)
	if err != nil {
		return fmt.Errorf("decode EthereumTransaction: %w", err)
	}
	scaleEncoded := translator.EncodeEthereumTransaction(tx)

	hash, err := s.Client.SubmitEvmTransaction(r.Context(), tx, scaleEncoded)
	if err != nil {
		return err
	}
	*reply = hexHash(hash)
	return nil
}

func (s *Service) latestHash(r *http.Request) ([32]byte, error) {
	number, err := s.Client.BlockNumber(r.Context())
	if err != nil {
		return [32]byte{}, err
	}
	hash, _, err := s.Client.Backend.BlockHash(r.Context(), number)
	return hash, err
}

func (s *Service) metadata() (translator.Metadata, error) {
	if s.MetadataLookup == nil {
		return translator.Metadata{}, fmt.Errorf("ethapi: no MetadataLookup configured")
	}
	return s.MetadataLookup()
}

func parseAddrParam(params []string) (translator.Address, error) {
	if len(params) < 1 {
		return translator.Address{}, fmt.Errorf("need at least 1 param")
	}
	raw, err := hexDecode(params[0])
	if err != nil || len(raw) != 20 {
		return translator.Address{}, fmt.Errorf("invalid address %q", params[0])
	}
	var addr translator.Address
	copy(addr[:], raw)
	return addr, nil
}
