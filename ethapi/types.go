// Package ethapi is the flat JSON-RPC method set exposed over gorilla/rpc:
// one method per Ethereum RPC call, each translating between hex-string
// wire arguments and package gateway/translator's typed calls.
package ethapi

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/subclone/subeth/translator"
)

// EthArgs is the eth_call argument object; only To and Data matter to
// this gateway's Call preconditions.
type EthArgs struct {
	To   string `json:"to"`
	From string `json:"from"`
	Data string `json:"data"`
}

// Block is the JSON shape returned by eth_getBlockBy{Hash,Number}.
type Block struct {
	Number           string        `json:"number"`
	Hash             string        `json:"hash"`
	ParentHash       string        `json:"parentHash"`
	StateRoot        string        `json:"stateRoot"`
	TransactionsRoot string        `json:"transactionsRoot"`
	Timestamp        string        `json:"timestamp"`
	Transactions     []interface{} `json:"transactions"`
}

// Transaction is the JSON shape returned by transaction-lookup methods.
type Transaction struct {
	Hash                 string `json:"hash"`
	BlockHash            string `json:"blockHash"`
	BlockNumber          string `json:"blockNumber"`
	From                 string `json:"from"`
	To                   string `json:"to"`
	Value                string `json:"value"`
	Input                string `json:"input"`
	Nonce                string `json:"nonce"`
	Gas                  string `json:"gas"`
	MaxFeePerGas         string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas"`
}

// WorkResult is the fixed zero-triple eth_getWork returns.
type WorkResult [3]string

func strip0x(s string) string {
	if len(s) > 2 && s[0:2] == "0x" {
		return s[2:]
	}
	return s
}

func hexEncode(b []byte) string { return "0x" + hex.EncodeToString(b) }

func hexDecode(s string) ([]byte, error) { return hex.DecodeString(strip0x(s)) }

func hexQuantity(v uint64) string { return "0x" + strconv.FormatUint(v, 16) }

func hexUint256(v *uint256.Int) string {
	if v == nil {
		return "0x0"
	}
	return v.Hex()
}

func hexHash(h [32]byte) string { return hexEncode(h[:]) }

func hexAddress(a translator.Address) string { return strings.ToLower(hexEncode(a[:])) }

// defaultBlock is the parsed form of the JSON-RPC default-block parameter:
// https://github.com/ethereum/wiki/wiki/JSON-RPC#the-default-block-parameter
type defaultBlock struct {
	named  string // "latest", "earliest", "pending"
	number uint64
	isNum  bool
}

func parseDefaultBlock(input string) (defaultBlock, error) {
	switch input {
	case "latest", "earliest", "pending":
		return defaultBlock{named: input}, nil
	}
	n, err := strconv.ParseUint(strip0x(input), 16, 64)
	if err != nil {
		return defaultBlock{}, fmt.Errorf("not a named block or a hex number: %q", input)
	}
	return defaultBlock{number: n, isNum: true}, nil
}

func blockToWire(b translator.EthBlock, fullTx bool) Block {
	txs := make([]interface{}, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		if fullTx {
			txs = append(txs, transactionToWire(tx, b))
		} else {
			txs = append(txs, hexHash(tx.Hash))
		}
	}
	return Block{
		Number:           hexQuantity(b.Number),
		Hash:             hexHash(b.Hash),
		ParentHash:       hexHash(b.ParentHash),
		StateRoot:        hexHash(b.StateRoot),
		TransactionsRoot: hexHash(b.TransactionsRoot),
		Timestamp:        hexQuantity(b.Timestamp),
		Transactions:     txs,
	}
}

func transactionToWire(tx translator.EthTransaction, b translator.EthBlock) Transaction {
	return Transaction{
		Hash:                 hexHash(tx.Hash),
		BlockHash:            hexHash(b.Hash),
		BlockNumber:          hexQuantity(b.Number),
		From:                 hexAddress(tx.From),
		To:                   hexAddress(tx.To),
		Value:                hexUint256(tx.Value),
		Input:                hexEncode(tx.Input),
		Nonce:                hexQuantity(tx.Nonce),
		Gas:                  hexQuantity(tx.GasLimit),
		MaxFeePerGas:         hexUint256(tx.MaxFeePerGas),
		MaxPriorityFeePerGas: hexUint256(tx.MaxPriorityFeePerGas),
	}
}
