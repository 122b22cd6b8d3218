package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/ledger"
	"github.com/iov-one/htlc/store"
	"github.com/iov-one/htlc/store/iavl"
	"github.com/iov-one/htlc/swap"
	"github.com/tendermint/tendermint/libs/log"
)

func cmdSimulate(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `
Execute hex encoded instructions, one per line, against a local ledger
initialized from a genesis file. Each instruction is signed by the signer and
its result is written as a line of JSON.

	$ htlccli fund ... | htlccli simulate -genesis genesis.json -signer <sender>
		`)
		fl.PrintDefaults()
	}
	var (
		genesisFl  = fl.String("genesis", env(envGenesis, ""), "Path to the genesis file.")
		signerFl   = flPubkey(fl, "signer", "", "Address signing every instruction.")
		dbFl       = fl.String("db", "", "Directory of a persistent ledger. Genesis is applied only when it is empty. In memory when not set.")
		logLevelFl = fl.String("log-level", "error", "Log level written to stderr: debug, info, error or none.")
	)
	fl.Parse(args)

	if *genesisFl == "" {
		return fmt.Errorf("genesis file required, use -genesis flag or %s variable", envGenesis)
	}
	signer := signerFl.key()
	if signer.IsZero() {
		return fmt.Errorf("signer address required")
	}
	allow, err := log.AllowLevel(*logLevelFl)
	if err != nil {
		return fmt.Errorf("invalid log level: %s", err)
	}
	logger := log.NewFilter(log.NewTMLogger(log.NewSyncWriter(os.Stderr)), allow).
		With("module", "simulate")

	opts, err := htlc.LoadOptions(*genesisFl)
	if err != nil {
		return fmt.Errorf("cannot load genesis: %s", err)
	}
	sim, err := newSimulation(opts, *dbFl)
	if err != nil {
		return err
	}
	defer sim.closeDB()

	ctx := htlc.WithLogger(context.Background(), logger)
	enc := json.NewEncoder(output)
	lines := bufio.NewScanner(input)
	for n := 1; lines.Scan(); n++ {
		line := strings.TrimSpace(lines.Text())
		if line == "" {
			continue
		}
		data, err := hex.DecodeString(line)
		if err != nil {
			return fmt.Errorf("line %d: cannot hex decode instruction: %s", n, err)
		}
		res, err := sim.execute(htlc.WithLogInfo(ctx, "line", n), signer, data)
		if err != nil {
			return fmt.Errorf("line %d: %s", n, err)
		}
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("cannot JSON serialize: %s", err)
		}
	}
	if err := lines.Err(); err != nil {
		return fmt.Errorf("cannot read instructions: %s", err)
	}
	return nil
}

// simulation is a ledger running the escrow program declared in genesis.
type simulation struct {
	program *swap.Program
	ledger  *ledger.Ledger
	closeDB func()
}

func newSimulation(opts htlc.Options, dbDir string) (*simulation, error) {
	program, err := swap.FromGenesis(opts)
	if err != nil {
		return nil, fmt.Errorf("invalid swap genesis: %s", err)
	}

	var (
		db      ledger.Store = store.MemStore()
		closeDB              = func() {}
		initial              = true
	)
	if dbDir != "" {
		commit, err := iavl.NewCommitStore(dbDir, "ledger")
		if err != nil {
			return nil, fmt.Errorf("cannot open ledger database: %s", err)
		}
		if err := commit.LoadLatestVersion(); err != nil {
			commit.Close()
			return nil, fmt.Errorf("cannot load ledger database: %s", err)
		}
		db, closeDB, initial = commit, commit.Close, commit.LatestVersion().Version == 0
	}

	l := ledger.New(db, program)
	if initial {
		if err := ledger.FromGenesis(opts, l); err != nil {
			closeDB()
			return nil, fmt.Errorf("invalid ledger genesis: %s", err)
		}
	}
	return &simulation{program: program, ledger: l, closeDB: closeDB}, nil
}

// simulationResult is the state of the escrow after an instruction.
type simulationResult struct {
	Type           string           `json:"type"`
	Vault          solana.PublicKey `json:"vault"`
	VaultData      solana.PublicKey `json:"vault_data"`
	State          string           `json:"state"`
	VaultLamports  uint64           `json:"vault_lamports"`
	SignerLamports uint64           `json:"signer_lamports"`
}

// execute runs the encoded instruction signed by signer. The escrow accounts
// are derived from the instruction content.
func (s *simulation) execute(ctx context.Context, signer solana.PublicKey, data []byte) (*simulationResult, error) {
	msg, err := swap.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("cannot deserialize instruction: %s", err)
	}
	ins, err := instructionOf(s.program.ID(), signer, msg)
	if err != nil {
		return nil, fmt.Errorf("cannot build instruction: %s", err)
	}
	err = s.ledger.Execute(ctx, ledger.Transaction{
		Signers:      []solana.PublicKey{signer},
		Instructions: []solana.Instruction{ins},
	})
	if err != nil {
		return nil, fmt.Errorf("execution failed: %s", err)
	}

	metas := ins.Accounts()
	res := simulationResult{
		Type:      viewOf(msg).Type,
		VaultData: metas[1].PublicKey,
		Vault:     metas[2].PublicKey,
	}
	if res.VaultLamports, err = s.ledger.Balance(res.Vault); err != nil {
		return nil, err
	}
	if res.SignerLamports, err = s.ledger.Balance(signer); err != nil {
		return nil, err
	}
	acc, err := s.ledger.Account(res.VaultData)
	if err != nil {
		return nil, err
	}
	payment, err := swap.LoadPayment(&htlc.AccountInfo{Key: res.VaultData, Owner: acc.Owner, Data: acc.Data})
	if err != nil {
		return nil, fmt.Errorf("cannot read payment: %s", err)
	}
	res.State = payment.State.String()
	return &res, nil
}

func instructionOf(programID, signer solana.PublicKey, msg swap.Msg) (solana.Instruction, error) {
	switch m := msg.(type) {
	case *swap.FundMsg:
		return swap.NewFundInstruction(programID, signer, m)
	case *swap.FundTokenMsg:
		return swap.NewFundTokenInstruction(programID, signer, m)
	case *swap.ReceiverSpendMsg:
		return swap.NewSpendInstruction(programID, signer, m)
	case *swap.SenderRefundMsg:
		return swap.NewRefundInstruction(programID, signer, m)
	default:
		return nil, fmt.Errorf("unknown instruction %T", msg)
	}
}
