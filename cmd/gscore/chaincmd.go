// Copyright 2026 The gscore Authors
// This file is part of the gscore library.
//
// The gscore library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gscore library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gscore library. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/gscore/common"
	"github.com/tos-network/gscore/core"
	"github.com/tos-network/gscore/core/parallel"
	"github.com/tos-network/gscore/core/rawdb"
	"github.com/tos-network/gscore/core/score"
	"github.com/tos-network/gscore/core/state"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/icx"
	"github.com/tos-network/gscore/metrics"
	"github.com/tos-network/gscore/params"
	"github.com/tos-network/gscore/scores/luascore"
	"github.com/tos-network/gscore/scores/token"
	"github.com/urfave/cli/v2"
)

var (
	FromFlag = &cli.StringFlag{
		Name:  "from",
		Usage: "Sender address of the query",
	}
	ToFlag = &cli.StringFlag{
		Name:     "to",
		Usage:    "Score address to query",
		Required: true,
	}
	MethodFlag = &cli.StringFlag{
		Name:     "method",
		Usage:    "Read-only method to call",
		Required: true,
	}
	ParamFlag = &cli.StringSliceFlag{
		Name:  "param",
		Usage: "Method parameter as name=value, repeatable",
	}

	initCommand = &cli.Command{
		Action:    initGenesis,
		Name:      "init",
		Usage:     "Bootstrap and initialize a new score database",
		ArgsUsage: "<genesisPath>",
		Description: `
The init command mints the genesis balances and installs the genesis scores
of the given JSON file. It fails if the data directory was initialized before.`,
	}
	runCommand = &cli.Command{
		Action:    runBlock,
		Name:      "run",
		Usage:     "Execute a block of transactions",
		ArgsUsage: "<blockPath>",
		Description: `
The run command executes the transactions of the given JSON block file on
top of the stored state, commits the results and prints the receipts. Block
heights must follow each other without gaps.`,
	}
	queryCommand = &cli.Command{
		Action: query,
		Name:   "query",
		Usage:  "Call a read-only score method",
		Flags:  []cli.Flag{FromFlag, ToFlag, MethodFlag, ParamFlag},
	}
	receiptCommand = &cli.Command{
		Action:    receipt,
		Name:      "receipt",
		Usage:     "Print the stored receipt of a transaction",
		ArgsUsage: "<txHash>",
	}
	balanceCommand = &cli.Command{
		Action:    balance,
		Name:      "balance",
		Usage:     "Print the native balance of an address",
		ArgsUsage: "<address>",
	}
)

// runtimeEnv is an engine over an opened data directory.
type runtimeEnv struct {
	config *params.Config
	db     ethdb.KeyValueStore
	engine *core.Engine
}

func (env *runtimeEnv) Close() error { return env.db.Close() }

func newBuiltins() *score.BuiltinLoader {
	loader := score.NewBuiltinLoader()
	token.Register(loader)
	return loader
}

// newLoader serves every content type the tool can deploy.
func newLoader(cfg *params.Config) score.Loader {
	loader := score.NewMuxLoader()
	loader.Handle(params.ContentTypeBuiltin, newBuiltins())
	loader.Handle(params.ContentTypeLua, luascore.NewLoader(cfg.LuaCallTimeout))
	return loader
}

// openRuntime resolves the configuration and opens the data directory.
func openRuntime(ctx *cli.Context, readonly bool) (*runtimeEnv, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, err
	}
	metrics.Setup(cfg.Metrics)

	db, err := rawdb.NewLevelDBDatabase(filepath.Join(cfg.DataDir, "scoredata"), ctx.Int(CacheFlag.Name), 16, "gscore/db/", readonly)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	storage, err := state.NewKVStorage(db, cfg.StorageCacheBytes, cfg.StorageBloomBits)
	if err != nil {
		db.Close()
		return nil, err
	}
	sdb := state.NewDatabase(storage)
	registry, err := score.NewRegistry(sdb, newLoader(cfg), cfg.RegistryCacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &runtimeEnv{
		config: cfg,
		db:     db,
		engine: core.NewEngine(cfg, sdb, registry, icx.NewLedger(sdb)),
	}, nil
}

func initGenesis(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return errors.New("need genesis.json file as the only argument")
	}
	genesis, err := core.LoadGenesis(ctx.Args().First())
	if err != nil {
		return err
	}
	env, err := openRuntime(ctx, false)
	if err != nil {
		return err
	}
	defer env.Close()

	if height, ok := rawdb.ReadLastHeight(env.db); ok {
		return fmt.Errorf("database already initialized at height %d", height)
	}
	addrs, err := env.engine.Genesis(context.Background(), genesis)
	if err != nil {
		return fmt.Errorf("failed to apply genesis: %w", err)
	}
	rawdb.WriteLastHeight(env.db, 0)
	for _, addr := range addrs {
		fmt.Fprintln(ctx.App.Writer, addr)
	}
	log.Info("Successfully wrote genesis state", "datadir", env.config.DataDir)
	return nil
}

// blockFile is the JSON input of the run command.
type blockFile struct {
	Height       math.HexOrDecimal64 `json:"height"`
	Timestamp    math.HexOrDecimal64 `json:"timestamp"`
	Transactions []txFile            `json:"transactions"`
}

type txFile struct {
	From      common.Address        `json:"from"`
	To        common.Address        `json:"to"`
	Value     *math.HexOrDecimal256 `json:"value,omitempty"`
	StepLimit math.HexOrDecimal64   `json:"stepLimit"`
	Timestamp math.HexOrDecimal64   `json:"timestamp"`
	Nonce     math.HexOrDecimal64   `json:"nonce,omitempty"`
	DataType  string                `json:"dataType,omitempty"`
	Data      json.RawMessage       `json:"data,omitempty"`
}

func (tf *txFile) transaction() *types.Transaction {
	tx := &types.Transaction{
		From:      tf.From,
		To:        tf.To,
		StepLimit: uint64(tf.StepLimit),
		Timestamp: uint64(tf.Timestamp),
		Nonce:     uint64(tf.Nonce),
		DataType:  tf.DataType,
		Data:      tf.Data,
	}
	if tf.Value != nil {
		tx.Value = (*big.Int)(tf.Value)
	}
	tx.Hash = tx.ComputeHash()
	return tx
}

func loadBlock(file string) (*types.Block, []*types.Transaction, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}
	var bf blockFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, nil, fmt.Errorf("invalid block file %s: %w", file, err)
	}
	txs := make([]*types.Transaction, len(bf.Transactions))
	hashes := make([][]byte, 0, len(txs)+1)
	var height [8]byte
	binary.BigEndian.PutUint64(height[:], uint64(bf.Height))
	hashes = append(hashes, height[:])
	for i := range bf.Transactions {
		txs[i] = bf.Transactions[i].transaction()
		hashes = append(hashes, txs[i].Hash.Bytes())
	}
	block := &types.Block{
		Height:    uint64(bf.Height),
		Hash:      common.Sha3Hash(hashes...),
		Timestamp: uint64(bf.Timestamp),
	}
	return block, txs, nil
}

func runBlock(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return errors.New("need a block file as the only argument")
	}
	block, txs, err := loadBlock(ctx.Args().First())
	if err != nil {
		return err
	}
	env, err := openRuntime(ctx, false)
	if err != nil {
		return err
	}
	defer env.Close()

	last, ok := rawdb.ReadLastHeight(env.db)
	if !ok {
		return errors.New("database not initialized, run init first")
	}
	if block.Height != last+1 {
		return fmt.Errorf("block height %d does not follow %d", block.Height, last)
	}
	start := time.Now()
	receipts, err := parallel.NewExecutor(env.engine, ctx.Int(WorkersFlag.Name)).ExecuteBlock(context.Background(), block, txs)
	if err != nil {
		return err
	}
	rawdb.WriteReceipts(env.db, receipts)
	rawdb.WriteLastHeight(env.db, block.Height)

	failed := 0
	out := make([]interface{}, len(receipts))
	for i, r := range receipts {
		if r.Failed() {
			failed++
		}
		out[i] = r.ToMap(common.ToCamelCase)
	}
	log.Info("Imported block", "height", block.Height, "hash", block.Hash, "time", params.UnixMicroToTime(block.Timestamp), "txs", len(txs), "failed", failed, "elapsed", gethcommon.PrettyDuration(time.Since(start)))
	return printJSON(ctx.App.Writer, out)
}

func query(ctx *cli.Context) error {
	to, err := common.ParseAddress(ctx.String(ToFlag.Name))
	if err != nil {
		return err
	}
	var from common.Address
	if s := ctx.String(FromFlag.Name); s != "" {
		if from, err = common.ParseAddress(s); err != nil {
			return err
		}
	}
	args := make(map[string]string)
	for _, kv := range ctx.StringSlice(ParamFlag.Name) {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid parameter %q, want name=value", kv)
		}
		args[name] = value
	}
	env, err := openRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer env.Close()

	height, _ := rawdb.ReadLastHeight(env.db)
	v, err := env.engine.Query(context.Background(), &types.Block{Height: height}, &core.QueryRequest{
		From:   from,
		To:     to,
		Method: ctx.String(MethodFlag.Name),
		Params: args,
	})
	if err != nil {
		return err
	}
	if v == nil {
		return printJSON(ctx.App.Writer, nil)
	}
	return printJSON(ctx.App.Writer, v.JSON())
}

func receipt(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return errors.New("need a transaction hash as the only argument")
	}
	b, err := hexutil.Decode(ctx.Args().First())
	if err != nil || len(b) != common.HashLength {
		return fmt.Errorf("invalid transaction hash %q", ctx.Args().First())
	}
	env, err := openRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer env.Close()

	r := rawdb.ReadReceipt(env.db, common.BytesToHash(b))
	if r == nil {
		return fmt.Errorf("receipt %x not found", b)
	}
	return printJSON(ctx.App.Writer, r.ToMap(common.ToCamelCase))
}

func balance(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return errors.New("need an address as the only argument")
	}
	addr, err := common.ParseAddress(ctx.Args().First())
	if err != nil {
		return err
	}
	env, err := openRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer env.Close()

	bal, err := env.engine.Balance(context.Background(), addr)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, hexutil.EncodeBig(bal))
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
