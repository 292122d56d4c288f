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

package score

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tos-network/gscore/core/types"
	"github.com/tos-network/gscore/core/vm"
)

// CallPayload is the data of a "call" transaction or a query.
type CallPayload struct {
	Method string            `json:"method"`
	Params map[string]string `json:"params,omitempty"`
}

// DeployPayload is the data of a "deploy" transaction.
type DeployPayload struct {
	ContentType string            `json:"contentType"`
	Content     hexutil.Bytes     `json:"content"`
	Params      map[string]string `json:"params,omitempty"`
}

// DecodeCall parses call data.
func DecodeCall(data []byte) (*CallPayload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidPayload)
	}
	var p CallPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.Method == "" {
		return nil, fmt.Errorf("%w: missing method field", ErrInvalidPayload)
	}
	return &p, nil
}

// DecodeDeploy parses deploy data.
func DecodeDeploy(data []byte) (*DeployPayload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidPayload)
	}
	var p DeployPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.ContentType == "" || len(p.Content) == 0 {
		return nil, fmt.Errorf("%w: missing content", ErrInvalidPayload)
	}
	return &p, nil
}

// MakeCall encodes call data.
func MakeCall(method string, params map[string]string) (json.RawMessage, error) {
	return json.Marshal(&CallPayload{Method: method, Params: params})
}

// MakeDeploy encodes deploy data.
func MakeDeploy(contentType string, content []byte, params map[string]string) (json.RawMessage, error) {
	return json.Marshal(&DeployPayload{ContentType: contentType, Content: content, Params: params})
}

// ConvertParams converts external text parameters to the declared types.
// Every declared parameter must be present and no others may be given.
func ConvertParams(ps []vm.Param, raw map[string]string) ([]types.Value, error) {
	out := make([]types.Value, len(ps))
	for i, p := range ps {
		s, ok := raw[p.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing parameter %q", vm.ErrInvalidParams, p.Name)
		}
		v, err := types.ParseValue(p.Type, s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", vm.ErrInvalidParams, p.Name, err)
		}
		out[i] = v
	}
	if len(raw) > len(ps) {
		extra := make([]string, 0, len(raw)-len(ps))
		for name := range raw {
			if !declared(ps, name) {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		return nil, fmt.Errorf("%w: unexpected parameters %v", vm.ErrInvalidParams, extra)
	}
	return out, nil
}

func declared(ps []vm.Param, name string) bool {
	for _, p := range ps {
		if p.Name == name {
			return true
		}
	}
	return false
}
