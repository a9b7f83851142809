// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package denali

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"", ""},
		{"true", "01"},
		{"false", ""},
		{"0", ""},
		{"1", "01"},
		{"256", "0100"},
		{"1,000", "03e8"},
		{"1_000", "03e8"},
		{"-1", "ff"},
		{"-128", "80"},
		{"-129", "ff7f"},
		{"+255", "00ff"},
		{"+1", "01"},
		{"0x1234", "1234"},
		{"0x", ""},
		{"0b101", "05"},
		{"str:ab", "6162"},
		{"''ab", "6162"},
		{"``ab", "6162"},
		{"u64:1", "0000000000000001"},
		{"u32:2", "00000002"},
		{"u16:3", "0003"},
		{"u8:4", "04"},
		{"i8:-1", "ff"},
		{"i16:-2", "fffe"},
		{"i64:-1", "ffffffffffffffff"},
		{"nested:str:ab", "000000026162"},
		{"biguint:1", "0000000101"},
		{"biguint:0", "00000000"},
		{"str:a|u8:1|0x02", "610102"},
	}
	vi := ValueInterpreter{}
	for _, test := range tests {
		t.Run(test.expr, func(t *testing.T) {
			got, err := vi.Interpret(test.expr)
			require.NoError(t, err)
			assert.Equal(t, test.want, hex.EncodeToString(got))
		})
	}
}

func TestInterpretAddresses(t *testing.T) {
	require := require.New(t)
	vi := ValueInterpreter{}

	addr, err := vi.Interpret("address:alice")
	require.NoError(err)
	require.Len(addr, api.AddressLen)
	require.Equal("alice"+strings.Repeat("_", api.AddressLen-5), string(addr))

	sc, err := vi.Interpret("sc:adder")
	require.NoError(err)
	require.Len(sc, api.AddressLen)
	require.Equal(make([]byte, api.SCAddressNumLeadingZeros), sc[:api.SCAddressNumLeadingZeros])
	require.Equal("adder"+strings.Repeat("_", api.AddressLen-api.SCAddressNumLeadingZeros-5), string(sc[api.SCAddressNumLeadingZeros:]))

	_, err = vi.Interpret("address:" + strings.Repeat("a", api.AddressLen+1))
	require.ErrorIs(err, errAddressLong)
	_, err = vi.Interpret("sc:" + strings.Repeat("a", api.AddressLen-api.SCAddressNumLeadingZeros+1))
	require.ErrorIs(err, errAddressLong)

	parsed, err := vi.Address("sc:adder")
	require.NoError(err)
	require.True(parsed.IsSmartContract())

	_, err = vi.Address("str:short")
	require.ErrorIs(err, ErrAddressLength)
}

func TestInterpretKeccak(t *testing.T) {
	require := require.New(t)

	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write([]byte("abc"))
	want := hash.Sum(nil)

	got, err := ValueInterpreter{}.Interpret("keccak256:str:abc")
	require.NoError(err)
	require.Equal(want, got)
	require.Equal(mustHex(t, "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"), got)
}

func TestInterpretFile(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	require.NoError(os.WriteFile(filepath.Join(dir, "data.bin"), []byte{1, 2, 3}, 0o644))

	vi := ValueInterpreter{Dir: dir}
	got, err := vi.Interpret("file:data.bin")
	require.NoError(err)
	require.Equal([]byte{1, 2, 3}, got)

	_, err = vi.Interpret("file:missing.bin")
	require.Error(err)
}

func TestInterpretNoFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.bin"), []byte{1, 2, 3}, 0o644))

	vi := ValueInterpreter{Dir: dir, NoFiles: true}
	for _, expr := range []string{
		"file:data.bin",
		"nested:file:data.bin",
		"keccak256:file:data.bin",
		"0x|file:data.bin",
		"str:a|nested:keccak256:file:data.bin",
	} {
		_, err := vi.Interpret(expr)
		assert.ErrorIs(t, err, ErrFileReference, expr)
	}

	got, err := vi.Interpret("nested:str:file:data.bin")
	require.NoError(t, err)
	require.Equal(t, api.NestedEncodeBytes([]byte("file:data.bin")), got)
}

func TestInterpretErrors(t *testing.T) {
	vi := ValueInterpreter{}
	for _, expr := range []string{"abc", "0xabc", "0b12", "u8:256", "i8:128", "u64:-1", "biguint:-1", "str:a|bad"} {
		_, err := vi.Interpret(expr)
		assert.Error(t, err, expr)
	}
}

func TestNumericValues(t *testing.T) {
	require := require.New(t)
	vi := ValueInterpreter{}

	n, err := vi.BigUint("1,000,000,000,000,000,000,000")
	require.NoError(err)
	require.Equal("1000000000000000000000", n.String())

	v, err := vi.U64("u64:42")
	require.NoError(err)
	require.EqualValues(42, v)

	v, err = vi.U64("")
	require.NoError(err)
	require.Zero(v)

	_, err = vi.U64("0x010000000000000000")
	require.ErrorIs(err, errValueTooLarge)
}

func TestValueUnmarshal(t *testing.T) {
	require := require.New(t)

	var values []Value
	require.NoError(json.Unmarshal([]byte(`["str:a", ["u8:1", "0x02"], 12]`), &values))
	require.Equal([]Value{"str:a", "u8:1|0x02", "12"}, values)
	require.True(Value("*").IsAny())
	require.False(Value("0").IsAny())
}

func TestFormatAddress(t *testing.T) {
	require := require.New(t)
	vi := ValueInterpreter{}

	for _, expr := range []Value{"address:alice", "sc:adder"} {
		addr, err := vi.Address(expr)
		require.NoError(err)
		require.Equal(expr, FormatAddress(addr))
	}

	raw := api.Address{0: 'a', 31: 1}
	formatted := FormatAddress(raw)
	require.True(strings.HasPrefix(string(formatted), hexPrefix))
	back, err := vi.Address(formatted)
	require.NoError(err)
	require.Equal(raw, back)
}
