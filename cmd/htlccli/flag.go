package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// flHex returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flHex(fl *flag.FlagSet, name, defaultVal, usage string) *flagbyte {
	var b flagbyte
	if defaultVal != "" {
		if err := b.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q hex encoded flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&b, name, usage)
	return &b
}

type flagbyte []byte

func (b flagbyte) String() string {
	return hex.EncodeToString(b)
}

func (b *flagbyte) Set(raw string) error {
	val, err := hex.DecodeString(raw)
	if err != nil {
		return err
	}
	*b = val
	return nil
}

// hash returns the value as a secret, a secret hash or a commitment.
func (b flagbyte) hash() ([32]byte, error) {
	var h [32]byte
	if len(b) != len(h) {
		return h, fmt.Errorf("32 bytes required, got %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// flPubkey returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flPubkey(fl *flag.FlagSet, name, defaultVal, usage string) *flagpubkey {
	var k flagpubkey
	if defaultVal != "" {
		if err := k.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q base58 encoded public key flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&k, name, usage)
	return &k
}

type flagpubkey solana.PublicKey

func (k flagpubkey) String() string {
	return solana.PublicKey(k).String()
}

func (k *flagpubkey) Set(raw string) error {
	val, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return err
	}
	*k = flagpubkey(val)
	return nil
}

func (k flagpubkey) key() solana.PublicKey {
	return solana.PublicKey(k)
}
