package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/htlc/htlctest"
	"github.com/iov-one/htlc/htlctest/assert"
	"github.com/iov-one/htlc/swap"
)

func TestCmdSimulate(t *testing.T) {
	dir, err := ioutil.TempDir("", "htlccli")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	programID := htlctest.NewKey(t)
	sender := htlctest.NewKey(t)
	receiver := htlctest.NewKey(t)
	genesis := filepath.Join(dir, "genesis.json")
	content := fmt.Sprintf(`{
		"ledger": {"accounts": [{"address": %q, "lamports": 10000}, {"address": %q, "lamports": 10}]},
		"swap": {"program_id": %q}
	}`, sender, receiver, programID)
	assert.Nil(t, ioutil.WriteFile(genesis, []byte(content), 0600))

	secret := htlctest.RandomSecret(t)
	secretHash := swap.HashSecret(secret[:])
	escrow, err := swap.FindEscrow(programID, 1000, secretHash)
	assert.Nil(t, err)

	fund := encode(t, &swap.FundMsg{
		SecretHash:    secretHash,
		LockTime:      1000,
		Amount:        500,
		Receiver:      receiver,
		RentExemption: 100,
		VaultBump:     escrow.VaultBump,
		VaultDataBump: escrow.VaultDataBump,
	})
	spend := encode(t, &swap.ReceiverSpendMsg{
		Secret:        secret,
		LockTime:      1000,
		Amount:        500,
		Sender:        sender,
		VaultBump:     escrow.VaultBump,
		VaultDataBump: escrow.VaultDataBump,
	})

	run := func(signer solana.PublicKey, db string, lines ...string) ([]simulationResult, error) {
		var output bytes.Buffer
		args := []string{"-genesis", genesis, "-signer", signer.String(), "-log-level", "none"}
		if db != "" {
			args = append(args, "-db", db)
		}
		input := strings.NewReader(strings.Join(lines, "\n"))
		if err := cmdSimulate(input, &output, args); err != nil {
			return nil, err
		}
		var results []simulationResult
		dec := json.NewDecoder(&output)
		for dec.More() {
			var r simulationResult
			assert.Nil(t, dec.Decode(&r))
			results = append(results, r)
		}
		return results, nil
	}

	t.Run("in memory ledger starts from genesis every time", func(t *testing.T) {
		res, err := run(sender, "", fund, "")
		assert.Nil(t, err)
		assert.Equal(t, []simulationResult{{
			Type:           "fund",
			Vault:          escrow.Vault,
			VaultData:      escrow.VaultData,
			State:          "funded",
			VaultLamports:  600,
			SignerLamports: 9300,
		}}, res)

		if _, err := run(receiver, "", spend); err == nil {
			t.Fatal("spend of a swap that was never funded must fail")
		}
	})

	t.Run("persistent ledger", func(t *testing.T) {
		db := filepath.Join(dir, "ledger")
		res, err := run(sender, db, fund)
		assert.Nil(t, err)
		assert.Equal(t, "funded", res[0].State)

		res, err = run(receiver, db, spend)
		assert.Nil(t, err)
		assert.Equal(t, []simulationResult{{
			Type:           "receiver_spend",
			Vault:          escrow.Vault,
			VaultData:      escrow.VaultData,
			State:          "spent",
			VaultLamports:  100,
			SignerLamports: 510,
		}}, res)

		// genesis is not credited again
		if _, err := run(receiver, db, spend); err == nil {
			t.Fatal("a spent swap must not be spent again")
		}
	})
}

func TestCmdSimulateGenesisErrors(t *testing.T) {
	dir, err := ioutil.TempDir("", "htlccli")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	signer := htlctest.NewKey(t)
	cases := map[string]string{
		"no program":      `{"ledger": {"accounts": []}}`,
		"not json":        `{"swap": `,
		"invalid account": `{"swap": {"program_id": "11111111111111111111111111111112"}, "ledger": {"accounts": [{"address": "0OIl", "lamports": 1}]}}`,
	}
	for testName, content := range cases {
		t.Run(testName, func(t *testing.T) {
			genesis := filepath.Join(dir, "genesis.json")
			assert.Nil(t, ioutil.WriteFile(genesis, []byte(content), 0600))
			args := []string{"-genesis", genesis, "-signer", signer.String(), "-log-level", "none"}
			if err := cmdSimulate(strings.NewReader(""), ioutil.Discard, args); err == nil {
				t.Fatal("want error")
			}
		})
	}
}

func encode(t testing.TB, msg swap.Msg) string {
	t.Helper()
	raw, err := swap.Pack(msg)
	assert.Nil(t, err)
	return hex.EncodeToString(raw)
}
