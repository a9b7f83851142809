// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package denali

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ava-labs/avalanchego/utils/wrappers"
	"golang.org/x/crypto/sha3"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

const (
	concatSeparator = "|"

	filePrefix      = "file:"
	keccak256Prefix = "keccak256:"
	strPrefix       = "str:"
	strQuotes       = "''"
	strBackticks    = "``"
	addressPrefix   = "address:"
	scAddressPrefix = "sc:"
	nestedPrefix    = "nested:"
	bigUintPrefix   = "biguint:"
	hexPrefix       = "0x"
	binaryPrefix    = "0b"

	addressPadding = '_'
)

var (
	errBadValue      = errors.New("invalid value expression")
	errValueTooLarge = errors.New("value does not fit")
	errAddressLong   = errors.New("address name too long")
)

// ValueInterpreter turns value expressions into bytes. File references are
// resolved against Dir, or rejected anywhere in the expression when NoFiles
// is set.
type ValueInterpreter struct {
	Dir     string
	NoFiles bool
}

// Interpret evaluates [expr]:
//
//	""                          empty
//	true, false                 0x01, empty
//	123, 1_000, 1,000           minimal big endian unsigned
//	-5, +5                      minimal two's complement
//	0x..., 0b...                raw bytes
//	str:abc, ''abc, ``abc       ASCII bytes
//	address:name, sc:name       32 byte addresses
//	u64:, u32:, u16:, u8:       fixed width unsigned
//	i64:, i32:, i16:, i8:       fixed width signed
//	biguint:N, nested:expr      length prefixed
//	file:path                   file contents
//	keccak256:expr              hash of the rest
//	a|b                         concatenation
func (vi ValueInterpreter) Interpret(expr string) ([]byte, error) {
	if expr == "" {
		return []byte{}, nil
	}
	if strings.HasPrefix(expr, filePrefix) {
		if vi.NoFiles {
			return nil, fmt.Errorf("%w: %q", ErrFileReference, expr)
		}
		path := strings.TrimPrefix(expr, filePrefix)
		if !filepath.IsAbs(path) {
			path = filepath.Join(vi.Dir, path)
		}
		return os.ReadFile(path)
	}
	if strings.HasPrefix(expr, keccak256Prefix) {
		arg, err := vi.Interpret(strings.TrimPrefix(expr, keccak256Prefix))
		if err != nil {
			return nil, err
		}
		hash := sha3.NewLegacyKeccak256()
		_, _ = hash.Write(arg)
		return hash.Sum(nil), nil
	}

	if parts := strings.Split(expr, concatSeparator); len(parts) > 1 {
		var out []byte
		for _, part := range parts {
			b, err := vi.Interpret(part)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		return out, nil
	}

	switch {
	case expr == "true":
		return []byte{1}, nil
	case expr == "false":
		return []byte{}, nil
	case strings.HasPrefix(expr, strPrefix):
		return []byte(strings.TrimPrefix(expr, strPrefix)), nil
	case strings.HasPrefix(expr, strQuotes):
		return []byte(strings.TrimPrefix(expr, strQuotes)), nil
	case strings.HasPrefix(expr, strBackticks):
		return []byte(strings.TrimPrefix(expr, strBackticks)), nil
	case strings.HasPrefix(expr, addressPrefix):
		return namedAddress(strings.TrimPrefix(expr, addressPrefix), 0)
	case strings.HasPrefix(expr, scAddressPrefix):
		return namedAddress(strings.TrimPrefix(expr, scAddressPrefix), api.SCAddressNumLeadingZeros)
	case strings.HasPrefix(expr, nestedPrefix):
		inner, err := vi.Interpret(strings.TrimPrefix(expr, nestedPrefix))
		if err != nil {
			return nil, err
		}
		return api.NestedEncodeBytes(inner), nil
	case strings.HasPrefix(expr, bigUintPrefix):
		n, err := parseUnsigned(strings.TrimPrefix(expr, bigUintPrefix))
		if err != nil {
			return nil, err
		}
		return api.NestedEncodeBigUint(n), nil
	}
	if b, ok, err := interpretFixedWidth(expr); ok {
		return b, err
	}
	return interpretNumber(expr)
}

// BigUint interprets [expr] as an unsigned amount.
func (vi ValueInterpreter) BigUint(expr Value) (*big.Int, error) {
	b, err := vi.Interpret(string(expr))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

// U64 interprets [expr] as an unsigned integer of at most 8 bytes.
func (vi ValueInterpreter) U64(expr Value) (uint64, error) {
	b, err := vi.Interpret(string(expr))
	if err != nil {
		return 0, err
	}
	v, err := api.TopDecodeU64(b)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %s", errValueTooLarge, expr, err)
	}
	return v, nil
}

// Address interprets [expr] and requires a 32 byte result.
func (vi ValueInterpreter) Address(expr Value) (api.Address, error) {
	b, err := vi.Interpret(string(expr))
	if err != nil {
		return api.ZeroAddress, err
	}
	addr, err := api.AddressFromBytes(b)
	if err != nil {
		return api.ZeroAddress, fmt.Errorf("%w: %q: %s", ErrAddressLength, expr, err)
	}
	return addr, nil
}

// namedAddress pads [name] with underscores after [zeros] leading zero bytes.
func namedAddress(name string, zeros int) ([]byte, error) {
	if len(name) > api.AddressLen-zeros {
		return nil, fmt.Errorf("%w: %q", errAddressLong, name)
	}
	addr := make([]byte, api.AddressLen)
	copy(addr[zeros:], name)
	for i := zeros + len(name); i < api.AddressLen; i++ {
		addr[i] = addressPadding
	}
	return addr, nil
}

var fixedWidths = map[string]int{
	"64": wrappers.LongLen,
	"32": wrappers.IntLen,
	"16": wrappers.ShortLen,
	"8":  wrappers.ByteLen,
}

func interpretFixedWidth(expr string) ([]byte, bool, error) {
	sep := strings.IndexByte(expr, ':')
	if sep < 2 {
		return nil, false, nil
	}
	kind, bits, arg := expr[0], expr[1:sep], expr[sep+1:]
	width, ok := fixedWidths[bits]
	if !ok || (kind != 'u' && kind != 'i') {
		return nil, false, nil
	}

	clean := stripSeparators(arg)
	out := make([]byte, wrappers.LongLen)
	if kind == 'u' {
		v, err := strconv.ParseUint(clean, 10, width*8)
		if err != nil {
			return nil, true, fmt.Errorf("%w: %q: %s", errBadValue, expr, err)
		}
		binary.BigEndian.PutUint64(out, v)
	} else {
		v, err := strconv.ParseInt(clean, 10, width*8)
		if err != nil {
			return nil, true, fmt.Errorf("%w: %q: %s", errBadValue, expr, err)
		}
		binary.BigEndian.PutUint64(out, uint64(v))
	}
	return out[wrappers.LongLen-width:], true, nil
}

func interpretNumber(expr string) ([]byte, error) {
	switch {
	case strings.HasPrefix(expr, hexPrefix):
		b, err := hex.DecodeString(strings.TrimPrefix(expr, hexPrefix))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %s", errBadValue, expr, err)
		}
		return b, nil
	case strings.HasPrefix(expr, binaryPrefix):
		n, ok := new(big.Int).SetString(strings.TrimPrefix(expr, binaryPrefix), 2)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errBadValue, expr)
		}
		return n.Bytes(), nil
	case strings.HasPrefix(expr, "-"), strings.HasPrefix(expr, "+"):
		n, ok := new(big.Int).SetString(stripSeparators(expr), 10)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errBadValue, expr)
		}
		return signedBytes(n), nil
	}
	n, err := parseUnsigned(expr)
	if err != nil {
		return nil, err
	}
	return n.Bytes(), nil
}

func parseUnsigned(expr string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(stripSeparators(expr), 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", errBadValue, expr)
	}
	return n, nil
}

// signedBytes is the minimal two's complement encoding of [n].
func signedBytes(n *big.Int) []byte {
	switch n.Sign() {
	case 0:
		return []byte{}
	case 1:
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	magnitude := new(big.Int).Neg(n)
	magnitude.Sub(magnitude, big.NewInt(1))
	size := magnitude.BitLen()/8 + 1
	v := new(big.Int).Lsh(big.NewInt(1), uint(size*8))
	v.Add(v, n)
	out := make([]byte, size)
	return v.FillBytes(out)
}

func stripSeparators(s string) string {
	return strings.NewReplacer(",", "", "_", "").Replace(s)
}
