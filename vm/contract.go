// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dharitri/dharitri-wasm-debug/api"
)

// Payable values of an endpoint.
const (
	NotPayable  = ""
	PayableMoax = api.MoaxTokenIdentifier
	PayableAny  = "*"
)

// EndpointFunc is the body of a contract endpoint. It receives the host API of
// its call frame together with the raw call arguments.
type EndpointFunc func(ctx api.API, args [][]byte) ([][]byte, error)

// Endpoint is one entry of a contract's dispatch table.
type Endpoint struct {
	Name string
	// Payable is NotPayable, PayableMoax, PayableAny or a token identifier.
	Payable string
	Handler EndpointFunc
}

func (e *Endpoint) checkPayable(cv api.CallValueAPI) error {
	switch e.Payable {
	case PayableAny:
		return nil
	case NotPayable:
		return cv.CheckNotPayable()
	case PayableMoax:
		if cv.DCTNumTransfers() > 0 {
			return api.NewTxError(api.ErrNonPayable, api.StatusExecutionFailed, api.NonPayableFuncDCT)
		}
		return nil
	default:
		if cv.MoaxValue().Sign() > 0 {
			return api.NewTxError(api.ErrNonPayable, api.StatusExecutionFailed, api.NonPayableFuncMoax)
		}
		for i := 0; i < cv.DCTNumTransfers(); i++ {
			if cv.TokenByIndex(i).String() != e.Payable {
				return api.NewTxError(api.ErrNonPayable, api.StatusExecutionFailed, api.BadTokenProvided)
			}
		}
		return nil
	}
}

// ContractCode is the explicit dispatch table of a contract: endpoint names
// mapped to their handlers. It is built once and never changes while
// transactions execute.
type ContractCode struct {
	name      string
	endpoints map[string]*Endpoint
}

func NewContractCode(name string) *ContractCode {
	return &ContractCode{
		name:      name,
		endpoints: make(map[string]*Endpoint),
	}
}

// Register adds an endpoint. It panics on duplicates since a dispatch table
// with two handlers for one name is a programming error.
func (c *ContractCode) Register(name, payable string, handler EndpointFunc) *ContractCode {
	if _, ok := c.endpoints[name]; ok {
		panic(fmt.Sprintf("endpoint %q registered twice in %s", name, c.name))
	}
	c.endpoints[name] = &Endpoint{Name: name, Payable: payable, Handler: handler}
	return c
}

func (c *ContractCode) Name() string { return c.name }

func (c *ContractCode) Endpoint(name string) (*Endpoint, bool) {
	ep, ok := c.endpoints[name]
	return ep, ok
}

func (c *ContractCode) EndpointNames() []string {
	names := make([]string, 0, len(c.endpoints))
	for name := range c.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ContractMap resolves account code to contract implementations. Code is
// referenced by path ("output/adder.wasm", "file:../output/adder.wasm"):
// only the file name is significant.
type ContractMap struct {
	contracts map[string]*ContractCode
}

func NewContractMap() *ContractMap {
	return &ContractMap{contracts: make(map[string]*ContractCode)}
}

// Register binds [code] to the contract file [path], replacing any previous
// binding.
func (m *ContractMap) Register(path string, code *ContractCode) *ContractMap {
	m.contracts[CodeKey(path)] = code
	return m
}

func (m *ContractMap) Get(path []byte) (*ContractCode, bool) {
	code, ok := m.contracts[CodeKey(string(path))]
	return code, ok
}

// CodeKey normalizes a code reference to the key contracts are registered
// under.
func CodeKey(path string) string {
	path = strings.TrimPrefix(path, "file:")
	return filepath.Base(filepath.FromSlash(path))
}
